package model_test

import (
	"testing"

	"github.com/KusumaMurthy109/Elysian/internal/domain/elo"
	"github.com/KusumaMurthy109/Elysian/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestFeedbackSeedRating(t *testing.T) {
	Convey("Given the feedback seed map", t, func() {
		Convey("Recognized values map to their seeds", func() {
			So(model.FeedbackLike.SeedRating(), ShouldEqual, 1100)
			So(model.FeedbackNeutral.SeedRating(), ShouldEqual, 1000)
			So(model.FeedbackDislike.SeedRating(), ShouldEqual, 900)
		})

		Convey("Unrecognized values fall back to the base rating", func() {
			So(model.Feedback("LOVE").SeedRating(), ShouldEqual, elo.BaseRating)
			So(model.Feedback("").SeedRating(), ShouldEqual, elo.BaseRating)
			So(model.Feedback("like").SeedRating(), ShouldEqual, elo.BaseRating)
		})
	})
}

func TestDefaults(t *testing.T) {
	Convey("Given default record constructors", t, func() {
		Convey("A default city record starts at the base rating", func() {
			rec := model.DefaultCityRecord()
			So(rec.GlobalRating, ShouldEqual, elo.BaseRating)
			So(rec.ComparisonCount, ShouldEqual, 0)
		})

		Convey("An empty profile has a usable ratings map", func() {
			p := model.EmptyUserProfile()
			So(p.PersonalRatings, ShouldNotBeNil)
			So(len(p.PersonalRatings), ShouldEqual, 0)
			So(p.ComparisonCount, ShouldEqual, 0)
		})
	})
}
