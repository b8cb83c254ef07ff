package util

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewMailbox(t *testing.T) {
	mb := NewMailbox[int]()
	assert.NotNil(t, mb, "NewMailbox should not return nil")
	assert.NotNil(t, mb.notify, "notify channel should be initialized")
	assert.False(t, mb.Pending(), "a new mailbox should be empty")

	_, ok := mb.Take()
	assert.False(t, ok, "Take on an empty mailbox should report no value")
}

func TestPostAndTake(t *testing.T) {
	mb := NewMailbox[[]int]()
	mb.Post([]int{1, 2, 3})

	assert.True(t, mb.Pending())
	v, ok := mb.Take()
	assert.True(t, ok)
	assert.Equal(t, []int{1, 2, 3}, v)

	assert.False(t, mb.Pending(), "Take should empty the mailbox")
	_, ok = mb.Take()
	assert.False(t, ok)
}

func TestOnlyLatestValueIsKept(t *testing.T) {
	mb := NewMailbox[string]()

	mb.Post("frame1")
	mb.Post("frame2")
	mb.Post("frame3")

	select {
	case <-mb.Ready():
	default:
		t.Fatal("should have received a notification")
	}

	// A single notification for several posts
	select {
	case <-mb.Ready():
		t.Fatal("channel should be empty")
	default:
	}

	v, ok := mb.Take()
	assert.True(t, ok)
	assert.Equal(t, "frame3", v, "Take should return the last posted value")
}

func TestTakeDrainsNotification(t *testing.T) {
	mb := NewMailbox[int]()
	mb.Post(7)

	v, ok := mb.Take()
	assert.True(t, ok)
	assert.Equal(t, 7, v)

	select {
	case <-mb.Ready():
		t.Fatal("notification should have been drained by Take")
	default:
	}
}

func TestMailboxConcurrency(t *testing.T) {
	mb := NewMailbox[int]()
	done := make(chan struct{})

	go func() {
		for i := 0; i < 1000; i++ {
			mb.Post(i)
		}
		close(done)
	}()

	lastRead := -1
	var readerWg sync.WaitGroup
	readerWg.Add(1)
	go func() {
		defer readerWg.Done()
		check := func() {
			if val, ok := mb.Take(); ok {
				if val < lastRead {
					t.Errorf("read a stale value: got %d, last was %d", val, lastRead)
				}
				lastRead = val
			}
		}
		for {
			select {
			case <-mb.Ready():
				check()
			case <-done:
				check()
				return
			}
		}
	}()

	readerWg.Wait()
	assert.Equal(t, 999, lastRead, "reader should end on the final value")
}
