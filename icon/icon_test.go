package icon

import (
	"testing"

	"github.com/gtplayer-cli/gtplayer/key"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func TestGet(t *testing.T) {
	Convey("Icon Get", t, func() {
		Convey("Plain variant renders ASCII", func() {
			viper.Set(key.IconsVariant, "plain")
			So(Get(Play), ShouldEqual, ">")
			So(Get(Fail), ShouldEqual, "x")
		})

		Convey("Unknown variant falls back to plain", func() {
			viper.Set(key.IconsVariant, "bogus")
			So(Get(Success), ShouldEqual, "+")
		})

		Convey("All icons are registered", func() {
			for i := Play; i <= Fail; i++ {
				_, ok := icons[i]
				So(ok, ShouldBeTrue)
			}
		})
	})
}
