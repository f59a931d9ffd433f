package session_test

import (
	"sync"
	"testing"
	"time"

	"github.com/KusumaMurthy109/Elysian/internal/adapters/session"
	. "github.com/smartystreets/goconvey/convey"
)

func TestStoreLifecycle(t *testing.T) {
	Convey("Given a session store", t, func() {
		store := session.NewStore()
		now := time.Now()

		Convey("Get on an unknown user returns nil", func() {
			So(store.Get("u1"), ShouldBeNil)
		})

		Convey("Put then Get round-trips", func() {
			sess := &session.Session{UserID: "u1", CityID: "paris", LastActivity: now}
			replaced := store.Put("u1", sess)
			So(replaced, ShouldBeFalse)
			So(store.Get("u1"), ShouldEqual, sess)
			So(store.Len(), ShouldEqual, 1)
		})

		Convey("Put replaces an existing session for the same user", func() {
			store.Put("u1", &session.Session{CityID: "paris", LastActivity: now})
			replaced := store.Put("u1", &session.Session{CityID: "tokyo", LastActivity: now})
			So(replaced, ShouldBeTrue)
			So(store.Get("u1").CityID, ShouldEqual, "tokyo")
			So(store.Len(), ShouldEqual, 1)
		})

		Convey("Remove deletes the session", func() {
			store.Put("u1", &session.Session{LastActivity: now})
			store.Remove("u1")
			So(store.Get("u1"), ShouldBeNil)
		})

		Convey("Different users do not interfere", func() {
			store.Put("u1", &session.Session{CityID: "paris", LastActivity: now})
			store.Put("u2", &session.Session{CityID: "lima", LastActivity: now})
			So(store.Len(), ShouldEqual, 2)
			store.Remove("u1")
			So(store.Get("u2").CityID, ShouldEqual, "lima")
		})
	})
}

func TestSweepExpired(t *testing.T) {
	Convey("Given sessions with mixed activity", t, func() {
		store := session.NewStore()
		now := time.Now()
		timeout := 300 * time.Second

		store.Put("stale", &session.Session{LastActivity: now.Add(-10 * time.Minute)})
		store.Put("fresh", &session.Session{LastActivity: now.Add(-1 * time.Minute)})

		Convey("Only sessions beyond the timeout are evicted", func() {
			evicted := store.SweepExpired(now, timeout)
			So(evicted, ShouldEqual, 1)
			So(store.Get("stale"), ShouldBeNil)
			So(store.Get("fresh"), ShouldNotBeNil)
		})

		Convey("Touch extends a session's life", func() {
			store.Touch("stale", now)
			evicted := store.SweepExpired(now, timeout)
			So(evicted, ShouldEqual, 0)
			So(store.Get("stale"), ShouldNotBeNil)
		})

		Convey("A session exactly at the timeout survives", func() {
			store.Put("edge", &session.Session{LastActivity: now.Add(-timeout)})
			store.SweepExpired(now, timeout)
			So(store.Get("edge"), ShouldNotBeNil)
		})
	})
}

func TestSessionMath(t *testing.T) {
	Convey("Given a session's search bounds", t, func() {
		Convey("Mid is floor of the midpoint", func() {
			So((&session.Session{Left: 0, Right: 3}).Mid(), ShouldEqual, 1)
			So((&session.Session{Left: 2, Right: 2}).Mid(), ShouldEqual, 2)
			So((&session.Session{Left: 1, Right: 4}).Mid(), ShouldEqual, 2)
		})

		Convey("Complete is exactly Left > Right", func() {
			So((&session.Session{Left: 2, Right: 2}).Complete(), ShouldBeFalse)
			So((&session.Session{Left: 3, Right: 2}).Complete(), ShouldBeTrue)
		})
	})
}

func TestPerUserLocking(t *testing.T) {
	Convey("Given the per-user stripes", t, func() {
		store := session.NewStore(session.WithStripeCount(8))

		Convey("Lock/Unlock serialize a counter without races", func() {
			const workers = 16
			counter := 0
			var wg sync.WaitGroup
			wg.Add(workers)
			for i := 0; i < workers; i++ {
				go func() {
					defer wg.Done()
					store.Lock("u1")
					counter++
					store.Unlock("u1")
				}()
			}
			wg.Wait()
			So(counter, ShouldEqual, workers)
		})
	})
}
