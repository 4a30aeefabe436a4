package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/okian/workbook/internal/domain/capture"
	"github.com/okian/workbook/internal/domain/geom"
	. "github.com/smartystreets/goconvey/convey"
)

type fakeClock struct {
	nanos atomic.Int64
}

func newFakeClock() *fakeClock {
	c := &fakeClock{}
	c.nanos.Store(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).UnixNano())
	return c
}

func (c *fakeClock) Now() time.Time { return time.Unix(0, c.nanos.Load()) }

func (c *fakeClock) Advance(d time.Duration) { c.nanos.Add(int64(d)) }

type origin struct{}

func (origin) Origin() (geom.Point, bool) { return geom.Point{}, true }

func sequentialIDs() func() string {
	var n atomic.Int64
	return func() string { return fmt.Sprintf("s%d", n.Add(1)) }
}

func TestMemoryStore_Lifecycle(t *testing.T) {
	ctx := context.Background()

	Convey("Given a memory store", t, func() {
		s := NewMemoryStore(ctx, WithIDGenerator(sequentialIDs()))
		defer s.Close()

		Convey("When a session is created", func() {
			r, err := s.Create(ctx, "trace", capture.NewSession())

			Convey("Then it can be fetched by id", func() {
				So(err, ShouldBeNil)
				So(r.ID, ShouldEqual, "s1")
				So(r.ActivityID, ShouldEqual, "trace")
				got, err := s.Get(ctx, "s1")
				So(err, ShouldBeNil)
				So(got, ShouldEqual, r)
				So(s.Count(ctx), ShouldEqual, 1)
			})

			Convey("And Do gives access to the session", func() {
				err := r.Do(func(sess *capture.Session) error {
					sess.Press(origin{}, geom.Pt(1, 2))
					return nil
				})
				So(err, ShouldBeNil)
				_ = r.Do(func(sess *capture.Session) error {
					So(sess.Len(), ShouldEqual, 1)
					return nil
				})
			})

			Convey("And Do propagates errors", func() {
				boom := errors.New("boom")
				So(r.Do(func(*capture.Session) error { return boom }), ShouldEqual, boom)
			})

			Convey("And deleting it removes it", func() {
				So(s.Delete(ctx, "s1"), ShouldBeNil)
				_, err := s.Get(ctx, "s1")
				So(errors.Is(err, ErrNotFound), ShouldBeTrue)
				So(errors.Is(s.Delete(ctx, "s1"), ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When a nil session is created", func() {
			_, err := s.Create(ctx, "trace", nil)
			So(errors.Is(err, ErrNilSession), ShouldBeTrue)
		})

		Convey("When the store is closed", func() {
			So(s.Close(), ShouldBeNil)
			So(s.Close(), ShouldBeNil)
			_, err := s.Create(ctx, "trace", capture.NewSession())
			So(errors.Is(err, ErrStoreClosed), ShouldBeTrue)
		})
	})

	Convey("Given the default uuid generator", t, func() {
		s := NewMemoryStore(ctx)
		defer s.Close()
		a, _ := s.Create(ctx, "trace", capture.NewSession())
		b, _ := s.Create(ctx, "trace", capture.NewSession())
		So(a.ID, ShouldNotEqual, b.ID)
		So(len(a.ID), ShouldEqual, 36)
	})
}

func TestMemoryStore_Expiry(t *testing.T) {
	ctx := context.Background()

	Convey("Given a store with a one minute TTL", t, func() {
		clock := newFakeClock()
		s := NewMemoryStore(ctx,
			WithTTL(time.Minute),
			WithSweepInterval(time.Hour),
			WithClock(clock.Now),
			WithIDGenerator(sequentialIDs()),
		)
		defer s.Close()

		r, err := s.Create(ctx, "trace", capture.NewSession())
		So(err, ShouldBeNil)

		Convey("When the session is used within the TTL", func() {
			clock.Advance(50 * time.Second)
			_ = r.Do(func(*capture.Session) error { return nil })
			clock.Advance(50 * time.Second)

			Convey("Then it survives", func() {
				_, err := s.Get(ctx, r.ID)
				So(err, ShouldBeNil)
				So(s.Sweep(), ShouldEqual, 0)
			})
		})

		Convey("When the session idles past the TTL", func() {
			clock.Advance(61 * time.Second)

			Convey("Then Get reports it missing and Sweep removes it", func() {
				_, err := s.Get(ctx, r.ID)
				So(errors.Is(err, ErrNotFound), ShouldBeTrue)
				So(s.Sweep(), ShouldEqual, 1)
				So(s.Count(ctx), ShouldEqual, 0)
			})
		})

		Convey("When an idle session is deleted before the janitor runs", func() {
			clock.Advance(61 * time.Second)
			err := s.Delete(ctx, r.ID)

			Convey("Then it is reported missing and dropped", func() {
				So(errors.Is(err, ErrNotFound), ShouldBeTrue)
				So(s.Count(ctx), ShouldEqual, 0)
			})
		})
	})
}

func TestMemoryStore_Capacity(t *testing.T) {
	ctx := context.Background()

	Convey("Given a store limited to two sessions", t, func() {
		clock := newFakeClock()
		s := NewMemoryStore(ctx,
			WithMaxSessions(2),
			WithTTL(time.Minute),
			WithSweepInterval(time.Hour),
			WithClock(clock.Now),
		)
		defer s.Close()

		_, err := s.Create(ctx, "trace", capture.NewSession())
		So(err, ShouldBeNil)
		_, err = s.Create(ctx, "trace", capture.NewSession())
		So(err, ShouldBeNil)

		Convey("When a third is created", func() {
			_, err := s.Create(ctx, "trace", capture.NewSession())

			Convey("Then capacity is reported", func() {
				So(errors.Is(err, ErrCapacity), ShouldBeTrue)
			})
		})

		Convey("When the existing sessions have expired", func() {
			clock.Advance(2 * time.Minute)
			_, err := s.Create(ctx, "trace", capture.NewSession())

			Convey("Then room is made by sweeping", func() {
				So(err, ShouldBeNil)
				So(s.Count(ctx), ShouldEqual, 1)
			})
		})
	})
}

func TestMemoryStore_Janitor(t *testing.T) {
	Convey("Given a store with a fast janitor", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		clock := newFakeClock()
		s := NewMemoryStore(ctx,
			WithTTL(time.Second),
			WithSweepInterval(5*time.Millisecond),
			WithClock(clock.Now),
		)
		defer s.Close()

		_, err := s.Create(ctx, "trace", capture.NewSession())
		So(err, ShouldBeNil)
		clock.Advance(time.Hour)

		Convey("Then expired sessions are purged in the background", func() {
			deadline := time.Now().Add(2 * time.Second)
			for s.Count(ctx) > 0 && time.Now().Before(deadline) {
				time.Sleep(5 * time.Millisecond)
			}
			So(s.Count(ctx), ShouldEqual, 0)
		})
	})
}

func TestMemoryStore_Concurrent(t *testing.T) {
	Convey("Given concurrent writers on one session", t, func() {
		ctx := context.Background()
		s := NewMemoryStore(ctx, WithTTL(0))
		defer s.Close()
		r, err := s.Create(ctx, "trace", capture.NewSession())
		So(err, ShouldBeNil)
		_ = r.Do(func(sess *capture.Session) error {
			sess.Press(origin{}, geom.Pt(0, 0))
			return nil
		})

		var wg sync.WaitGroup
		for i := range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := range 100 {
					_ = r.Do(func(sess *capture.Session) error {
						sess.Move(origin{}, geom.Pt(float64(i), float64(j)))
						return nil
					})
				}
			}()
		}
		wg.Wait()

		Convey("Then every move is captured", func() {
			_ = r.Do(func(sess *capture.Session) error {
				So(sess.Len(), ShouldEqual, 801)
				return nil
			})
		})
	})
}
