package cache

import "testing"

func TestConditionalGET_SetAndGet(t *testing.T) {
	c := NewConditionalGET(10)
	c.Set("https://example.com/", &Validator{ETag: `"abc"`, Body: []byte("hi")})

	v, ok := c.Get("https://example.com/")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if v.ETag != `"abc"` || string(v.Body) != "hi" {
		t.Errorf("got %+v", v)
	}
}

func TestConditionalGET_MissForUnknownURL(t *testing.T) {
	c := NewConditionalGET(10)
	if _, ok := c.Get("https://example.com/nope"); ok {
		t.Error("expected cache miss")
	}
}

func TestConditionalGET_EvictsAtCapacity(t *testing.T) {
	c := NewConditionalGET(2)
	c.Set("a", &Validator{})
	c.Set("b", &Validator{})
	c.Set("c", &Validator{})

	if len(c.store) != 2 {
		t.Errorf("expected store bounded to 2 entries, got %d", len(c.store))
	}
}
