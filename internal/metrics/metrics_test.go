package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCountWrite(t *testing.T) {
	path := "/tmp/test-brightness"
	before := testutil.ToFloat64(sysfsWrites.WithLabelValues(path))
	beforeErrs := testutil.ToFloat64(sysfsWriteErrors.WithLabelValues(path))

	CountWrite(path, nil)
	CountWrite(path, errors.New("boom"))

	if got := testutil.ToFloat64(sysfsWrites.WithLabelValues(path)); got != before+2 {
		t.Errorf("writes_total = %v, want %v", got, before+2)
	}
	if got := testutil.ToFloat64(sysfsWriteErrors.WithLabelValues(path)); got != beforeErrs+1 {
		t.Errorf("write_errors_total = %v, want %v", got, beforeErrs+1)
	}
}

func TestSetIndicatorSource(t *testing.T) {
	SetIndicatorSource("battery")

	if got := testutil.ToFloat64(indicatorLit.WithLabelValues("battery")); got != 1 {
		t.Errorf("indicator_lit{battery} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(indicatorLit.WithLabelValues("notification")); got != 0 {
		t.Errorf("indicator_lit{notification} = %v, want 0", got)
	}
	if got := testutil.ToFloat64(indicatorLit.WithLabelValues("off")); got != 0 {
		t.Errorf("indicator_lit{off} = %v, want 0", got)
	}
}

func TestSetBacklightBrightness(t *testing.T) {
	SetBacklightBrightness(128)
	if got := testutil.ToFloat64(backlightBrightness); got != 128 {
		t.Errorf("backlight_brightness = %v, want 128", got)
	}
}
