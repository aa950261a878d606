package stats

import (
	"strings"
	"testing"
	"time"
)

func TestPrecisionChange(t *testing.T) {
	stat := DefaultStatsReceiver().(*defaultStatsReceiver)
	if stat.precision != time.Nanosecond {
		t.Fatal("Default precision should be nanos.")
	}

	statp := stat.Precision(time.Millisecond).(*defaultStatsReceiver)
	if stat.precision != time.Nanosecond {
		t.Fatal("Default precision should still nanos.")
	}
	if statp.precision != time.Millisecond {
		t.Fatal("New stat precision should be millis.")
	}
	if stat.Precision(0).(*defaultStatsReceiver).precision != time.Nanosecond {
		t.Fatal("Non-positive precision should default to nanos.")
	}
}

func TestScopeChange(t *testing.T) {
	stat := DefaultStatsReceiver().(*defaultStatsReceiver)
	if len(stat.scope) != 0 {
		t.Fatal("Default scope should be empty.")
	}

	statp := stat.Scope("a/b", "c").(*defaultStatsReceiver)
	if len(stat.scope) != 0 {
		t.Fatal("Default scope should still empty.")
	}
	if len(statp.scope) != 2 || statp.scope[0] != "a_SLASH_b" || statp.scope[1] != "c" {
		t.Fatal("Invalid scope value: ", statp.scope)
	}
	if statp.scopedName("d") != "a_SLASH_b/c/d" {
		t.Fatal("Invalid scope name: " + statp.scopedName("d"))
	}
}

func TestRegister(t *testing.T) {
	reg := NewFinagleStatsRegistry()
	if reg.GetOrRegister("counter", NewCounter()) == nil {
		t.Fatal("Registry did not save instrument")
	}
	if reg.GetOrRegister("gauge", NewGauge()) == nil {
		t.Fatal("Registry did not save instrument")
	}
	if reg.GetOrRegister("histogram", NewHistogram()) == nil {
		t.Fatal("Registry did not save instrument")
	}
	if reg.GetOrRegister("latency", NewLatency()) == nil {
		t.Fatal("Registry did not save instrument")
	}
}

func TestSharedInstruments(t *testing.T) {
	stat := DefaultStatsReceiver().Scope("ice")
	stat.Counter(IceResolveCounter).Inc(1)
	stat.Counter(IceResolveCounter).Inc(2)
	if c := stat.Counter(IceResolveCounter).Count(); c != 3 {
		t.Fatalf("Expected counters with the same name to be shared, got %d", c)
	}
	stat.Remove(IceResolveCounter)
	if c := stat.Counter(IceResolveCounter).Count(); c != 0 {
		t.Fatalf("Expected a fresh counter after Remove, got %d", c)
	}
}

func TestMarshal(t *testing.T) {
	Time = NewTestTime(time.Unix(0, 0), time.Nanosecond*5)
	defer func() { Time = DefaultStatsTime() }()

	reg := NewFinagleStatsRegistry()
	reg.GetOrRegister("counter", NewCounter()).(Counter).Inc(1)
	reg.GetOrRegister("gauge", NewGauge()).(Gauge).Update(2)

	reg.GetOrRegister("latency", NewLatency()).(Latency).Time().Stop()
	Time = NewTestTime(time.Unix(0, 0), time.Nanosecond*10)
	reg.GetOrRegister("latency", NewLatency()).(Latency).Time().Stop()

	bytes, err := reg.(MarshalerPretty).MarshalJSONPretty()
	expected :=
		`{
  "counter": 1,
  "gauge": 2,
  "latency.avg": 7.5,
  "latency.count": 2,
  "latency.max": 10,
  "latency.min": 5,
  "latency.p50": 7.5,
  "latency.p90": 10,
  "latency.p95": 10,
  "latency.p99": 10,
  "latency.p999": 10,
  "latency.p9999": 10,
  "latency.sum": 15
}`
	if string(bytes) != expected {
		t.Fatal("Wrong json marshal output: ", string(bytes), err)
	}
}

func TestRender(t *testing.T) {
	stat := DefaultStatsReceiver().Scope("ice")
	stat.Counter(IceBuildCounter).Inc(1)

	rendered := string(stat.Render(false))
	if rendered != `{"ice/buildCounter":1}` {
		t.Fatal("Expected current stats in render", rendered)
	}
	if !strings.Contains(string(stat.Render(true)), "\n") {
		t.Fatal("Expected pretty render to be indented")
	}
}

func TestNilReceiver(t *testing.T) {
	stat := NilStatsReceiver().Scope("a", "b")
	stat.Counter("c").Inc(1)
	stat.Gauge("g").Update(5)
	stat.Latency("l").Time().Stop()
	if stat.Counter("c").Count() != 0 {
		t.Fatal("Nil counter should not count")
	}
	if len(stat.Render(true)) != 0 {
		t.Fatal("Nil receiver should render nothing")
	}
}
