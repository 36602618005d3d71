package cache

import (
	"sync"
	"testing"

	"github.com/goliatone/go-viewkit/pkg/engine"
)

func constant(out string) engine.Template {
	return engine.TemplateFunc(func(engine.Locals) (string, error) { return out, nil })
}

func TestCache_PutRespectsFlag(t *testing.T) {
	c := New()

	if c.Put(TierContent, "/views/index.hbs", constant("index"), false) {
		t.Fatalf("put with caching disabled must not store")
	}
	if _, ok := c.Get(TierContent, "/views/index.hbs"); ok {
		t.Fatalf("unexpected cache hit")
	}

	if !c.Put(TierContent, "/views/index.hbs", constant("index"), true) {
		t.Fatalf("put with caching enabled must store")
	}
	tpl, ok := c.Get(TierContent, "/views/index.hbs")
	if !ok {
		t.Fatalf("expected cache hit")
	}
	out, err := tpl.Execute(nil)
	if err != nil || out != "index" {
		t.Fatalf("unexpected cached template output %q (%v)", out, err)
	}
}

func TestCache_TiersDoNotCollide(t *testing.T) {
	c := New()
	c.Put(TierContent, "layout", constant("content"), true)
	c.Put(TierLayout, "layout", constant("layout"), true)

	content, _ := c.Get(TierContent, "layout")
	layout, _ := c.Get(TierLayout, "layout")
	gotContent, _ := content.Execute(nil)
	gotLayout, _ := layout.Execute(nil)
	if gotContent != "content" || gotLayout != "layout" {
		t.Fatalf("tiers collided: content=%q layout=%q", gotContent, gotLayout)
	}
	if c.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", c.Len())
	}

	c.Flush()
	if c.Len() != 0 {
		t.Fatalf("expected empty cache after flush, got %d", c.Len())
	}
}

func TestCache_ConcurrentFirstWrites(t *testing.T) {
	c := New()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok := c.Get(TierContent, "/views/page.hbs"); !ok {
				c.Put(TierContent, "/views/page.hbs", constant("page"), true)
			}
		}()
	}
	wg.Wait()

	if c.Len() != 1 {
		t.Fatalf("expected a single entry, got %d", c.Len())
	}
}

func TestCache_NilSafe(t *testing.T) {
	var c *Cache
	if _, ok := c.Get(TierContent, "x"); ok {
		t.Fatalf("nil cache must miss")
	}
	if c.Put(TierContent, "x", constant("x"), true) {
		t.Fatalf("nil cache must not store")
	}
	if c.Len() != 0 {
		t.Fatalf("nil cache must be empty")
	}
}
