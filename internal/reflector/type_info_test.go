package reflector

import (
	"reflect"
	"sync"
	"testing"
)

type testStruct struct {
	Name string
}

type anotherStruct struct {
	Value int
}

func TestTypeInfoOf(t *testing.T) {
	ts := testStruct{Name: "test"}
	ti := TypeInfoOf(ts)

	if ti.Name != "github.com/codewandler/lazyref-go/internal/reflector.testStruct" {
		t.Errorf("unexpected Name: %s", ti.Name)
	}
	if ti.Type.Name() != "testStruct" {
		t.Errorf("unexpected Type.Name(): %s", ti.Type.Name())
	}
}

func TestTypeInfoOf_Pointer(t *testing.T) {
	ts := &testStruct{Name: "test"}
	ti := TypeInfoOf(ts)

	// Should unwrap pointer and return element type
	if ti.Name != "github.com/codewandler/lazyref-go/internal/reflector.testStruct" {
		t.Errorf("unexpected Name for pointer: %s", ti.Name)
	}
	if ti.Type.Kind() == reflect.Pointer {
		t.Error("Type should be unwrapped from pointer")
	}
}

func TestTypeInfoFor(t *testing.T) {
	ti := TypeInfoFor[testStruct]()

	if ti.Name != "github.com/codewandler/lazyref-go/internal/reflector.testStruct" {
		t.Errorf("unexpected Name: %s", ti.Name)
	}
	if ti.Type.Name() != "testStruct" {
		t.Errorf("unexpected Type.Name(): %s", ti.Type.Name())
	}
}

func TestTypeInfoFor_PointerAndValueShareEntry(t *testing.T) {
	tiPtr := TypeInfoFor[*testStruct]()
	tiVal := TypeInfoFor[testStruct]()

	if tiPtr != tiVal {
		t.Errorf("pointer and value type should resolve to the same info: %v vs %v", tiPtr, tiVal)
	}
}

func TestTypeInfoForType_Nil(t *testing.T) {
	ti := TypeInfoForType(nil)

	if ti.Name != "" {
		t.Errorf("expected empty Name for nil type, got: %s", ti.Name)
	}
	if ti.Type != nil {
		t.Error("expected nil Type for nil input")
	}
}

func TestConcurrentAccess(t *testing.T) {
	const goroutines = 100
	const iterations = 100

	var wg sync.WaitGroup
	wg.Add(goroutines)

	for range goroutines {
		go func() {
			defer wg.Done()
			for range iterations {
				_ = TypeInfoOf(testStruct{})
				_ = TypeInfoFor[anotherStruct]()
				_ = TypeInfoForType(reflect.TypeFor[string]())
			}
		}()
	}

	wg.Wait()
}

func TestCacheHit(t *testing.T) {
	// Clear cache for test isolation
	muCache.Lock()
	cache = make(map[reflect.Type]TypeInfo)
	muCache.Unlock()

	ti1 := TypeInfoOf(testStruct{})
	ti2 := TypeInfoOf(testStruct{})

	if ti1 != ti2 {
		t.Error("cached result should match original")
	}

	muCache.RLock()
	_, ok := cache[reflect.TypeFor[testStruct]()]
	muCache.RUnlock()

	if !ok {
		t.Error("expected cache to contain testStruct type")
	}
}
