package main

import (
	"bytes"
	"testing"

	"github.com/smartystreets/goconvey/convey"
)

func TestRootCmd(t *testing.T) {
	convey.Convey("Given the migrate command", t, func() {
		t.Setenv(dsnEnv, "")
		root := rootCmd()
		var out bytes.Buffer
		root.SetOut(&out)
		root.SetErr(&out)

		convey.Convey("Then it exposes every migration action", func() {
			names := map[string]bool{}
			for _, c := range root.Commands() {
				names[c.Name()] = true
			}
			convey.So(names["up"], convey.ShouldBeTrue)
			convey.So(names["down"], convey.ShouldBeTrue)
			convey.So(names["drop"], convey.ShouldBeTrue)
			convey.So(names["version"], convey.ShouldBeTrue)
		})

		convey.Convey("When no dsn is given", func() {
			root.SetArgs([]string{"up"})
			err := root.Execute()

			convey.Convey("Then it fails before touching a database", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, dsnEnv)
			})
		})
	})
}
