package notify

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	petsURI = "content://com.example.android.pets/pets"
	itemURI = petsURI + "/1"
)

type recorder struct {
	mu   sync.Mutex
	uris []string
}

func (r *recorder) OnChange(uri string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.uris = append(r.uris, uri)
}

func (r *recorder) got() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.uris...)
}

func TestRegistry_Delivery(t *testing.T) {
	cases := []struct {
		name        string
		registered  string
		descendants bool
		changed     string
		want        bool
	}{
		{"same uri", petsURI, false, petsURI, true},
		{"item change, collection observer without descendants", petsURI, false, itemURI, false},
		{"item change, collection observer with descendants", petsURI, true, itemURI, true},
		{"collection change reaches item observer", itemURI, false, petsURI, true},
		{"sibling item", petsURI + "/2", true, itemURI, false},
		{"other authority", "content://other/pets", true, petsURI, false},
		{"empty observes all", "", false, itemURI, true},
		{"authority root with descendants", "content://com.example.android.pets", true, itemURI, true},
		{"trailing slash ignored", petsURI + "/", false, petsURI, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			reg := NewRegistry()
			rec := &recorder{}
			reg.Register(tc.registered, tc.descendants, rec)

			reg.Notify(tc.changed)

			if tc.want {
				assert.Equal(t, []string{tc.changed}, rec.got())
			} else {
				assert.Empty(t, rec.got())
			}
		})
	}
}

func TestRegistry_Unregister(t *testing.T) {
	reg := NewRegistry()
	a, b := &recorder{}, &recorder{}

	subA := reg.Register(petsURI, true, a)
	reg.Register(petsURI, true, b)
	require.Equal(t, 2, reg.Len())
	assert.NotEmpty(t, subA.ID)
	assert.Equal(t, petsURI, subA.URI)
	assert.True(t, subA.Descendants)

	reg.Notify(itemURI)
	reg.Unregister(subA)
	reg.Unregister(subA)
	reg.Notify(itemURI)

	assert.Equal(t, 1, reg.Len())
	assert.Len(t, a.got(), 1)
	assert.Len(t, b.got(), 2)
}

func TestRegistry_SameObserverTwice(t *testing.T) {
	reg := NewRegistry()
	rec := &recorder{}

	s1 := reg.Register(petsURI, false, rec)
	s2 := reg.Register(itemURI, false, rec)
	assert.NotEqual(t, s1.ID, s2.ID)

	reg.Notify(petsURI)
	assert.Len(t, rec.got(), 2)
}

func TestRegistry_PanickingObserverIsSkipped(t *testing.T) {
	reg := NewRegistry()
	rec := &recorder{}

	var panicked []Subscription
	reg.OnPanic(func(sub Subscription, recovered any) {
		panicked = append(panicked, sub)
		assert.Equal(t, "boom", recovered)
	})

	bad := reg.Register("", true, ObserverFunc(func(string) { panic("boom") }))
	reg.Register("", true, rec)

	require.NotPanics(t, func() { reg.Notify(petsURI) })
	assert.Equal(t, []string{petsURI}, rec.got())
	require.Len(t, panicked, 1)
	assert.Equal(t, bad.ID, panicked[0].ID)
}

func TestRegistry_ObserverMayUnregisterDuringNotify(t *testing.T) {
	reg := NewRegistry()

	var sub Subscription
	calls := 0
	sub = reg.Register("", true, ObserverFunc(func(string) {
		calls++
		reg.Unregister(sub)
	}))

	reg.Notify(petsURI)
	reg.Notify(petsURI)
	assert.Equal(t, 1, calls)
	assert.Zero(t, reg.Len())
}

func TestRegistry_ConcurrentRegisterAndNotify(t *testing.T) {
	reg := NewRegistry()
	var delivered atomic.Int64

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				sub := reg.Register(petsURI, true, ObserverFunc(func(string) { delivered.Add(1) }))
				reg.Unregister(sub)
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				reg.Notify(itemURI)
			}
		}()
	}
	wg.Wait()

	assert.Zero(t, reg.Len())
}

func TestNop(t *testing.T) {
	assert.NotPanics(t, func() { Nop.Notify(petsURI) })
}

func TestChanObserver(t *testing.T) {
	obs := NewChanObserver(1)

	obs.OnChange(petsURI)
	obs.OnChange(itemURI)
	assert.Equal(t, 1, obs.Dropped())

	c := <-obs.C()
	assert.Equal(t, petsURI, c.URI)

	obs.Close()
	obs.Close()
	obs.OnChange(petsURI)

	_, ok := <-obs.C()
	assert.False(t, ok)
}
