package lock

import (
	"context"
	"errors"
	"sync"
)

// ErrTimeout is returned when the lock could not be acquired before the wait deadline.
var ErrTimeout = errors.New("room lock wait timeout")

// RoomLocker serialises booking writes for a single room.
type RoomLocker interface {
	Lock(ctx context.Context, roomID int64) (unlock func(), err error)
}

// Local is an in-process RoomLocker. It only protects a single API instance.
type Local struct {
	mu    sync.Mutex
	rooms map[int64]*roomEntry
}

type roomEntry struct {
	ch   chan struct{}
	refs int
}

func NewLocal() *Local {
	return &Local{rooms: make(map[int64]*roomEntry)}
}

func (l *Local) Lock(ctx context.Context, roomID int64) (func(), error) {
	l.mu.Lock()
	e, ok := l.rooms[roomID]
	if !ok {
		e = &roomEntry{ch: make(chan struct{}, 1)}
		l.rooms[roomID] = e
	}
	e.refs++
	l.mu.Unlock()

	select {
	case e.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(roomID, e)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.ch
			l.release(roomID, e)
		})
	}, nil
}

func (l *Local) release(roomID int64, e *roomEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(l.rooms, roomID)
	}
}
