package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/okian/staffnote/internal/adapters/http/api"
	"github.com/okian/staffnote/internal/adapters/repository"
	service "github.com/okian/staffnote/internal/app"
	"github.com/smartystreets/goconvey/convey"
)

func TestSmokeCommands(t *testing.T) {
	convey.Convey("Given a running server", t, func() {
		mux := http.NewServeMux()
		api.NewServer(service.New(service.WithStore(repository.NewMemoryStore())), "k").Register(context.Background(), mux)
		srv := httptest.NewServer(mux)
		defer srv.Close()

		execute := func(args ...string) (string, error) {
			var out bytes.Buffer
			root := newRootCmd(&out)
			root.SetArgs(append([]string{"--url", srv.URL, "--key", "k"}, args...))
			err := root.ExecuteContext(context.Background())
			return out.String(), err
		}

		convey.Convey("When calling hello", func() {
			out, err := execute("hello")

			convey.Convey("Then status and body are printed", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(out, convey.ShouldContainSubstring, "Status Code: 200")
				convey.So(out, convey.ShouldContainSubstring, "Hello World")
			})
		})

		convey.Convey("When creating an employee and an event", func() {
			_, err := execute("employee", "create", "e1", "--name", "Hanako", "--email", "h@example.com", "--role", "engineer")
			convey.So(err, convey.ShouldBeNil)
			out, err := execute("event", "create", "e1", "--type", "1on1", "--description", "weekly",
				"--timestamp", "2024-01-01T10:00:00+09:00", "--details", `{"a":1}`)

			convey.Convey("Then the event is created in UTC", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(out, convey.ShouldContainSubstring, "Status Code: 201")
				convey.So(out, convey.ShouldContainSubstring, "2024-01-01T01:00:00+00:00")
			})
		})

		convey.Convey("When details is not JSON", func() {
			_, err := execute("event", "create", "e1", "--type", "x", "--description", "y", "--details", "a=1")

			convey.Convey("Then the command fails locally", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When setting and reading a mapping", func() {
			_, err := execute("meet-map", "set", "h@example.com", "Hanako")
			convey.So(err, convey.ShouldBeNil)
			out, err := execute("meet-map", "get", "h@example.com")

			convey.Convey("Then the name is returned", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(out, convey.ShouldContainSubstring, `"google_meet_name":"Hanako"`)
			})
		})

		convey.Convey("When summarizing from stdin without a model configured", func() {
			var out bytes.Buffer
			root := newRootCmd(&out)
			root.SetIn(strings.NewReader("A: hi"))
			root.SetArgs([]string{"--url", srv.URL, "--key", "k", "summarize"})
			err := root.ExecuteContext(context.Background())

			convey.Convey("Then the server error is printed", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(out.String(), convey.ShouldContainSubstring, "Status Code: 500")
			})
		})

		convey.Convey("When running the full suite", func() {
			out, err := execute("run")

			convey.Convey("Then it passes", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(out, convey.ShouldContainSubstring, "smoke run completed")
			})
		})
	})
}
