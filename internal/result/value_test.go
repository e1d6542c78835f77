package result

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestValue_Equal_NumericRepresentations(t *testing.T) {
	ten := NumberFromInt(10)
	tenFloat := NumberFromFloat(10.0)
	tenScaled, _ := decimal.NewFromString("10.00")

	if !ten.Equal(tenFloat) {
		t.Error("Expected 10 to equal 10.0")
	}
	if !ten.Equal(Number(tenScaled)) {
		t.Error("Expected 10 to equal 10.00")
	}
	if ten.Equal(NumberFromInt(11)) {
		t.Error("Expected 10 to differ from 11")
	}
}

func TestValue_Equal_KindMismatch(t *testing.T) {
	if Text("10").Equal(NumberFromInt(10)) {
		t.Error("Expected text '10' to differ from number 10")
	}
	if Null().Equal(Text("")) {
		t.Error("Expected null to differ from empty text")
	}
}

func TestValue_Equal_Dates(t *testing.T) {
	a := Date(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	b := Date(time.Date(2024, 3, 1, 0, 0, 0, 0, time.FixedZone("X", 0)))
	c := Date(time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC))

	if !a.Equal(b) {
		t.Error("Expected same calendar date to compare equal")
	}
	if a.Equal(c) {
		t.Error("Expected different dates to compare unequal")
	}
}

func TestValue_Less_TypeOrder(t *testing.T) {
	ordered := []Value{
		Null(),
		Boolean(false),
		Boolean(true),
		NumberFromInt(-1),
		NumberFromInt(2),
		Date(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)),
		Date(time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)),
		Text("a"),
		Text("b"),
	}

	for i := 0; i < len(ordered)-1; i++ {
		if !ordered[i].Less(ordered[i+1]) {
			t.Errorf("Expected %v < %v", ordered[i], ordered[i+1])
		}
		if ordered[i+1].Less(ordered[i]) {
			t.Errorf("Expected %v not < %v", ordered[i+1], ordered[i])
		}
	}
}

func TestValue_MarshalJSON(t *testing.T) {
	row := Row{
		"n": NumberFromFloat(12.5),
		"s": Text("hello"),
		"b": Boolean(true),
		"d": Date(time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)),
		"x": Null(),
	}

	data, err := json.Marshal(row)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Expected valid JSON, got: %v", err)
	}

	if decoded["n"] != 12.5 {
		t.Errorf("Expected n = 12.5, got %v", decoded["n"])
	}
	if decoded["s"] != "hello" {
		t.Errorf("Expected s = hello, got %v", decoded["s"])
	}
	if decoded["b"] != true {
		t.Errorf("Expected b = true, got %v", decoded["b"])
	}
	if decoded["d"] != "2024-06-15" {
		t.Errorf("Expected d = 2024-06-15, got %v", decoded["d"])
	}
	if decoded["x"] != nil {
		t.Errorf("Expected x = null, got %v", decoded["x"])
	}
}

func TestValue_UnmarshalJSON_RoundTrip(t *testing.T) {
	original := Row{
		"n": NumberFromInt(7),
		"s": Text("plain"),
		"d": Date(time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)),
		"x": Null(),
	}

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	var restored Row
	if err := json.Unmarshal(data, &restored); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	for col, want := range original {
		got, ok := restored[col]
		if !ok {
			t.Fatalf("Missing column %s after round trip", col)
		}
		if !want.Equal(got) {
			t.Errorf("Column %s: expected %v, got %v", col, want, got)
		}
	}
}
