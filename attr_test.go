package pcd8544

import (
	"errors"
	"testing"
)

func TestGetBias(t *testing.T) {
	d, _, _ := newTestDev(t, &Opts{Bias: 3})
	got, err := d.Get(AttrBias)
	if err != nil {
		t.Fatal(err)
	}
	if got != "3" {
		t.Errorf("Get(bias) = %q, want \"3\"", got)
	}
	if err := d.Set(AttrBias, "5"); !errors.Is(err, ErrReadOnly) {
		t.Errorf("Set(bias) error = %v, want ErrReadOnly", err)
	}
	if d.Bias() != 3 {
		t.Errorf("Bias() = %d, want 3", d.Bias())
	}
}

func TestSetMode(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    string
		wantErr bool
	}{
		{"text", "0", "0", false},
		{"graph", "1", "1", false},
		{"command", "2", "2", false},
		{"trailing newline", "2\n", "2", false},
		{"end", "3", "0", true},
		{"out of range", "9", "0", true},
		{"too large", "300", "0", true},
		{"negative", "-1", "0", true},
		{"not a number", "graph", "0", true},
		{"empty", "", "0", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, _, _ := newTestDev(t, nil)
			err := d.Set(AttrMode, tt.value)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Set(mode, %q) error = %v, wantErr %t", tt.value, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("Set(mode, %q) error = %v, want ErrInvalidArgument", tt.value, err)
			}
			got, err := d.Get(AttrMode)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("Get(mode) = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSetModeKeepsPreviousOnFailure(t *testing.T) {
	d, _, _ := newTestDev(t, nil)
	if err := d.Set(AttrMode, "2"); err != nil {
		t.Fatal(err)
	}
	if err := d.Set(AttrMode, "9"); err == nil {
		t.Fatal("Set(mode, 9) should fail")
	}
	if got, _ := d.Get(AttrMode); got != "2" {
		t.Errorf("Get(mode) = %q, want \"2\"", got)
	}
	if d.Mode() != ModeCommand {
		t.Errorf("Mode() = %v, want %v", d.Mode(), ModeCommand)
	}
}

func TestUnknownAttribute(t *testing.T) {
	d, _, _ := newTestDev(t, nil)
	if _, err := d.Get("contrast"); !errors.Is(err, ErrUnknownAttribute) {
		t.Errorf("Get(contrast) error = %v, want ErrUnknownAttribute", err)
	}
	if err := d.Set("contrast", "1"); !errors.Is(err, ErrUnknownAttribute) {
		t.Errorf("Set(contrast) error = %v, want ErrUnknownAttribute", err)
	}
}

func TestAttributesWhileSessionOpen(t *testing.T) {
	d, _, _ := openTestDev(t, nil)
	if err := d.Set(AttrMode, "1"); err != nil {
		t.Errorf("Set(mode) with an open session error = %v", err)
	}
	if _, err := d.Get(AttrBias); err != nil {
		t.Errorf("Get(bias) with an open session error = %v", err)
	}
}

func TestKeys(t *testing.T) {
	d := &Dev{}
	keys := d.Keys()
	if len(keys) != 2 || keys[0] != AttrBias || keys[1] != AttrMode {
		t.Errorf("Keys() = %v, want [bias mode]", keys)
	}
}

func TestModeString(t *testing.T) {
	tests := []struct {
		m    Mode
		want string
	}{
		{ModeText, "text"},
		{ModeGraph, "graph"},
		{ModeCommand, "command"},
		{ModeEnd, "Mode(3)"},
	}
	for _, tt := range tests {
		if got := tt.m.String(); got != tt.want {
			t.Errorf("Mode(%d).String() = %q, want %q", uint8(tt.m), got, tt.want)
		}
	}
}
