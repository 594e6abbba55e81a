package dataio

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	ds "github.com/wdm0006/socioprep/pkg/dataset"
)

func TestLoadAndSave(t *testing.T) {
	quiet := Options{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}

	convey.Convey("Given a raw poverty table on disk", t, func() {
		dir := t.TempDir()
		src := filepath.Join(dir, "raw", "poverty.csv")
		convey.So(os.MkdirAll(filepath.Dir(src), 0o755), convey.ShouldBeNil)
		body := "Region,Province,Threshold (2018)\nA,P1,\"1,000\"\nA,P2,\n"
		convey.So(os.WriteFile(src, []byte(body), 0o644), convey.ShouldBeNil)

		convey.Convey("Raw loading keeps thousands separators as text", func() {
			opt := quiet
			opt.Raw = true
			f, err := Load(src, opt)
			convey.So(err, convey.ShouldBeNil)
			convey.So(f.Rows(), convey.ShouldEqual, 2)
			c, _ := f.ColumnByName("Threshold (2018)")
			convey.So(c.Kind(), convey.ShouldEqual, ds.KindString)
			convey.So(ds.FormatCell(c, 0), convey.ShouldEqual, "1,000")

			convey.Convey("and it survives a JSON Lines round trip", func() {
				out := filepath.Join(dir, "out", "poverty.jsonl")
				convey.So(Save(out, f, quiet), convey.ShouldBeNil)
				back, err := Load(out, opt)
				convey.So(err, convey.ShouldBeNil)
				convey.So(back.Names(), convey.ShouldResemble, f.Names())
				bc, _ := back.ColumnByName("Threshold (2018)")
				convey.So(ds.FormatCell(bc, 0), convey.ShouldEqual, "1,000")
			})
		})

		convey.Convey("An explicit unknown format is rejected", func() {
			opt := quiet
			opt.Format = "xlsx"
			_, err := Load(src, opt)
			convey.So(err, convey.ShouldNotBeNil)
		})

		convey.Convey("A missing file is an error", func() {
			_, err := Load(filepath.Join(dir, "nope.csv"), quiet)
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}
