package workunit

import "testing"

func TestParseStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Status
		wantErr bool
	}{
		{"implementing", StatusImplementing, false},
		{" Testing ", StatusTesting, false},
		{"blocked", StatusBlocked, false},
		{"in-progress", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseStatus(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseStatus(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseStatus(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCheckTransition(t *testing.T) {
	t.Parallel()

	tests := []struct {
		from, to Status
		ok       bool
	}{
		{StatusBacklog, StatusSpecifying, true},
		{StatusSpecifying, StatusTesting, true},
		{StatusValidating, StatusDone, true},
		{StatusBacklog, StatusTesting, false},
		{StatusSpecifying, StatusImplementing, false},
		{StatusValidating, StatusSpecifying, true},
		{StatusDone, StatusImplementing, true},
		{StatusImplementing, StatusBlocked, true},
		{StatusDone, StatusBlocked, false},
		{StatusBlocked, StatusImplementing, true},
		{StatusBlocked, StatusDone, false},
		{StatusTesting, StatusTesting, false},
	}
	for _, tt := range tests {
		err := CheckTransition(tt.from, tt.to)
		if (err == nil) != tt.ok {
			t.Errorf("CheckTransition(%s, %s) = %v, want ok=%v", tt.from, tt.to, err, tt.ok)
		}
	}
}

func TestStatuses(t *testing.T) {
	t.Parallel()

	got := Statuses()
	if len(got) != 7 || got[0] != StatusBacklog || got[6] != StatusBlocked {
		t.Errorf("Statuses() = %v", got)
	}
	got[0] = "mutated"
	if Statuses()[0] != StatusBacklog {
		t.Error("Statuses() must return a copy")
	}
}
