package cookiefile_test

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/okian/dashport/internal/adapters/cookiefile"
	"github.com/smartystreets/goconvey/convey"
)

func TestStore(t *testing.T) {
	convey.Convey("Given a store in a fresh directory", t, func() {
		path := filepath.Join(t.TempDir(), "secrets", "cookies.json")
		store, err := cookiefile.New(path)
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("When no file exists yet", func() {
			convey.Convey("Then loading yields an empty map and Has is false", func() {
				cookies, loadErr := store.Load()
				convey.So(loadErr, convey.ShouldBeNil)
				convey.So(cookies, convey.ShouldBeEmpty)
				convey.So(store.Has(), convey.ShouldBeFalse)
			})
		})

		convey.Convey("When saving cookies", func() {
			saved := map[string]string{"_session": "abc123", "csrf": "tok"}
			convey.So(store.Save(saved), convey.ShouldBeNil)

			convey.Convey("Then they load back intact", func() {
				cookies, loadErr := store.Load()
				convey.So(loadErr, convey.ShouldBeNil)
				convey.So(cookies, convey.ShouldResemble, saved)
				convey.So(store.Has(), convey.ShouldBeTrue)
			})

			convey.Convey("Then the file is owner-only", func() {
				if runtime.GOOS == "windows" {
					return
				}
				info, statErr := os.Stat(path)
				convey.So(statErr, convey.ShouldBeNil)
				convey.So(info.Mode().Perm(), convey.ShouldEqual, os.FileMode(0o600))
			})
		})

		convey.Convey("When the file holds invalid JSON", func() {
			convey.So(os.MkdirAll(filepath.Dir(path), 0o750), convey.ShouldBeNil)
			convey.So(os.WriteFile(path, []byte("{broken"), 0o600), convey.ShouldBeNil)

			convey.Convey("Then loading reports the error", func() {
				_, loadErr := store.Load()
				convey.So(loadErr, convey.ShouldNotBeNil)
			})
		})
	})
}

func TestParseBrowserFormat(t *testing.T) {
	convey.Convey("Given cookies pasted from a browser", t, func() {
		convey.Convey("When the input is a Cookie header", func() {
			cookies := cookiefile.ParseBrowserFormat("_session=abc123; csrf=tok; theme=dark")

			convey.Convey("Then every pair is captured", func() {
				convey.So(cookies, convey.ShouldResemble, map[string]string{
					"_session": "abc123",
					"csrf":     "tok",
					"theme":    "dark",
				})
			})
		})

		convey.Convey("When the input is a JSON object", func() {
			cookies := cookiefile.ParseBrowserFormat(`{"_session": "abc123", "csrf": "tok"}`)

			convey.Convey("Then the object maps directly", func() {
				convey.So(cookies, convey.ShouldResemble, map[string]string{
					"_session": "abc123",
					"csrf":     "tok",
				})
			})
		})

		convey.Convey("When the input is a single pair", func() {
			cookies := cookiefile.ParseBrowserFormat("_session=abc123")

			convey.Convey("Then one cookie is captured", func() {
				convey.So(cookies, convey.ShouldResemble, map[string]string{"_session": "abc123"})
			})
		})

		convey.Convey("When a value itself contains an equals sign", func() {
			cookies := cookiefile.ParseBrowserFormat("token=a=b=c")

			convey.Convey("Then only the first equals splits", func() {
				convey.So(cookies["token"], convey.ShouldEqual, "a=b=c")
			})
		})

		convey.Convey("When the input has no recognizable cookies", func() {
			cookies := cookiefile.ParseBrowserFormat("   just some words   ")

			convey.Convey("Then the result is empty", func() {
				convey.So(cookies, convey.ShouldBeEmpty)
			})
		})
	})
}
