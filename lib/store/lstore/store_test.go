package lstore

import (
	"errors"
	"fmt"
	"github.com/ValentinKolb/rexkv/lib/store"
	"reflect"
	"sync"
	"testing"
)

func TestSetGet(t *testing.T) {
	s := NewLocalStore()

	if _, ok, err := s.Get("missing"); ok || err != nil {
		t.Fatalf("Expected missing key to be not found without error, got ok=%v err=%v", ok, err)
	}

	buf := []byte("value")
	if err := s.Set("key", buf); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	buf[0] = 'X'

	value, ok, err := s.Get("key")
	if err != nil || !ok {
		t.Fatalf("Expected key to be found, got ok=%v err=%v", ok, err)
	}
	if !reflect.DeepEqual(value, []byte("value")) {
		t.Errorf("Expected value, got %s", value)
	}
}

func TestEmptyKey(t *testing.T) {
	s := NewLocalStore()

	var storeErr *store.Error
	if err := s.Set("", []byte("v")); !errors.As(err, &storeErr) || storeErr.Code != store.RetCInvalidOperation {
		t.Errorf("Expected invalid operation error, got %v", err)
	}
	if _, _, err := s.Get(""); !errors.As(err, &storeErr) {
		t.Errorf("Expected store error, got %v", err)
	}
}

func TestConcurrentAccess(t *testing.T) {
	s := NewLocalStore()

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := fmt.Sprintf("key-%d-%d", w, i)
				if err := s.Set(key, []byte(key)); err != nil {
					t.Errorf("Set failed: %v", err)
					return
				}
				if value, ok, _ := s.Get(key); !ok || string(value) != key {
					t.Errorf("Expected %s, got %s", key, value)
					return
				}
			}
		}(w)
	}
	wg.Wait()
}
