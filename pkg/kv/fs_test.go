package kv

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"go.uber.org/zap"
)

func TestFSStore(t *testing.T) {
	Convey("Given a fresh FS store", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		root := t.TempDir()
		store := NewFSStore(zap.NewNop(), root)
		ns := Namespace("namespace1")

		Convey("Values can be set", func() {
			err := store.Set(ctx, ns, "key1", "value1")
			So(err, ShouldBeNil)

			_, err = os.Stat(filepath.Join(root, "namespace1", "key1"))
			So(err, ShouldBeNil)
		})
		Convey("When reading a set value", func() {
			store.Set(ctx, ns, "key2", "value1")
			returned, err := store.Get(ctx, ns, "key2")
			Convey("The store does not error", func() {
				So(err, ShouldBeNil)
			})
			Convey("The value read is equal to the value set", func() {
				So(returned, ShouldEqual, "value1")
			})
		})
		Convey("When overwriting a value", func() {
			store.Set(ctx, ns, "key4", "old")
			store.Set(ctx, ns, "key4", "new")
			returned, err := store.Get(ctx, ns, "key4")
			So(err, ShouldBeNil)
			So(returned, ShouldEqual, "new")

			_, err = os.Stat(filepath.Join(root, "namespace1", "key4.tmp"))
			So(os.IsNotExist(err), ShouldBeTrue)
		})
		Convey("When reading a value that was not set", func() {
			returned, err := store.Get(ctx, ns, "key3")
			Convey("The store does not error", func() {
				So(err, ShouldBeNil)
			})
			Convey("The value is empty", func() {
				So(returned, ShouldEqual, "")
			})
		})
	})
}

func TestNewStore(t *testing.T) {
	Convey("NewStore", t, func() {
		logger := zap.NewNop()

		Convey("defaults to an in-memory store", func() {
			store, err := NewStore(logger, &Config{})
			So(err, ShouldBeNil)
			So(store, ShouldHaveSameTypeAs, &InMemoryStore{})
		})
		Convey("creates a FS store", func() {
			store, err := NewStore(logger, &Config{Type: TypeFS, Path: t.TempDir()})
			So(err, ShouldBeNil)
			So(store, ShouldHaveSameTypeAs, &FSStore{})
		})
		Convey("rejects unknown types", func() {
			_, err := NewStore(logger, &Config{Type: "Etcd"})
			So(err, ShouldNotBeNil)
		})
	})
}
