package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/okian/crease/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryDeduper(t *testing.T) {
	ctx := context.Background()

	Convey("Given a new InMemoryDeduper", t, func() {
		d := dedupe.NewInMemoryDeduper()
		So(d.Size(), ShouldEqual, 0)

		Convey("When a frame id is recorded twice", func() {
			first := d.SeenAndRecord(ctx, "frame-1")
			second := d.SeenAndRecord(ctx, "frame-1")

			Convey("Then only the second call reports it as seen", func() {
				So(first, ShouldBeFalse)
				So(second, ShouldBeTrue)
				So(d.Size(), ShouldEqual, 1)
			})
		})

		Convey("When a recorded id is unrecorded", func() {
			d.SeenAndRecord(ctx, "frame-1")
			d.Unrecord(ctx, "frame-1")
			d.Unrecord(ctx, "never-seen")

			Convey("Then it can be accepted again", func() {
				So(d.Size(), ShouldEqual, 0)
				So(d.SeenAndRecord(ctx, "frame-1"), ShouldBeFalse)
			})
		})
	})

	Convey("Given a deduper bounded to three ids", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(3))
		for _, id := range []string{"f1", "f2", "f3", "f4"} {
			So(d.SeenAndRecord(ctx, id), ShouldBeFalse)
		}

		Convey("Then the oldest id was evicted and the newest are kept", func() {
			So(d.Size(), ShouldEqual, 3)
			So(d.SeenAndRecord(ctx, "f4"), ShouldBeTrue)
			So(d.SeenAndRecord(ctx, "f3"), ShouldBeTrue)
			So(d.SeenAndRecord(ctx, "f2"), ShouldBeTrue)
			So(d.SeenAndRecord(ctx, "f1"), ShouldBeFalse)
		})

		Convey("Then unrecording frees a slot without evicting", func() {
			d.Unrecord(ctx, "f3")
			So(d.SeenAndRecord(ctx, "f5"), ShouldBeFalse)
			So(d.SeenAndRecord(ctx, "f2"), ShouldBeTrue)
			So(d.SeenAndRecord(ctx, "f4"), ShouldBeTrue)
		})
	})

	Convey("Given an unbounded deduper", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(0))
		for i := 0; i < 1000; i++ {
			d.SeenAndRecord(ctx, fmt.Sprintf("frame-%d", i))
		}
		So(d.Size(), ShouldEqual, 1000)
		So(d.SeenAndRecord(ctx, "frame-0"), ShouldBeTrue)
	})
}

func TestDedupeConcurrency(t *testing.T) {
	Convey("Given concurrent writers", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(10000))
		var wg sync.WaitGroup
		for g := 0; g < 10; g++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := 0; i < 100; i++ {
					// every goroutine races on the same ids
					d.SeenAndRecord(context.Background(), fmt.Sprintf("frame-%d", i))
				}
			}()
		}
		wg.Wait()

		Convey("Then each id is stored once", func() {
			So(d.Size(), ShouldEqual, 100)
		})
	})
}
