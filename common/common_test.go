package common

import (
	"reflect"
	"testing"
)

func TestSplitCommaSepToMap(t *testing.T) {
	m := SplitCommaSepToMap("ICE_LOCK_TIMEOUT=2s, ICE_LOG_LEVEL = debug,,broken,=x,url=a=b")
	expected := map[string]string{
		"ICE_LOCK_TIMEOUT": "2s",
		"ICE_LOG_LEVEL":    "debug",
		"url":              "a=b",
	}
	if !reflect.DeepEqual(m, expected) {
		t.Fatalf("expected %v; was %v", expected, m)
	}
	if len(SplitCommaSepToMap("")) != 0 {
		t.Fatal("expected empty map")
	}
}

func TestGenUUID(t *testing.T) {
	a, b := GenUUID(), GenUUID()
	if a == b || len(a) != 36 {
		t.Fatalf("expected two distinct uuids; was %v %v", a, b)
	}
}
