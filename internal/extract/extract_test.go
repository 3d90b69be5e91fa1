package extract

import (
	"strings"
	"testing"
)

func TestExtract_EmailOnly(t *testing.T) {
	record, ok := Extract("ali@example.com")
	if !ok {
		t.Fatal("expected sufficient record")
	}
	if record.Email != "ali@example.com" {
		t.Errorf("expected email 'ali@example.com', got %q", record.Email)
	}
	if record.Phone != "" {
		t.Errorf("expected no phone, got %q", record.Phone)
	}
}

func TestExtract_PhoneOnly(t *testing.T) {
	record, ok := Extract("05551234567")
	if !ok {
		t.Fatal("expected sufficient record")
	}
	if record.Phone == "" {
		t.Error("expected phone to be extracted")
	}
	if record.Email != "" {
		t.Errorf("expected no email, got %q", record.Email)
	}
}

func TestExtract_PhoneGroupedAndPrefixed(t *testing.T) {
	cases := []string{
		"0555 123 45 67",
		"+90 555 123 45 67",
		"90 555 123-45-67",
		"telefonum 0555 123 45 67 olacak",
	}
	for _, in := range cases {
		record, ok := Extract(in)
		if !ok || record.Phone == "" {
			t.Errorf("%q: expected phone match, got %+v", in, record)
		}
	}
}

func TestExtract_PhoneWhitespaceNormalized(t *testing.T) {
	record, _ := Extract("0555  123   45 67")
	if strings.Contains(record.Phone, "  ") {
		t.Errorf("phone not normalized: %q", record.Phone)
	}
}

func TestExtract_PlainChatIsInsufficient(t *testing.T) {
	record, ok := Extract("merhaba nasılsın")
	if ok {
		t.Error("expected insufficient record")
	}
	if record.Phone != "" || record.Email != "" {
		t.Errorf("expected no phone/email, got %+v", record)
	}
}

func TestExtract_AllFields(t *testing.T) {
	record, ok := Extract("Ali Veli 0555 123 45 67 ali@x.com @aliveli")
	if !ok {
		t.Fatal("expected sufficient record")
	}
	if record.Email != "ali@x.com" {
		t.Errorf("expected email 'ali@x.com', got %q", record.Email)
	}
	if record.Phone != "0555 123 45 67" {
		t.Errorf("expected phone '0555 123 45 67', got %q", record.Phone)
	}
	if record.SocialHandle != "@aliveli" {
		t.Errorf("expected handle '@aliveli', got %q", record.SocialHandle)
	}
	if !strings.HasPrefix(record.Name, "Ali Veli") {
		t.Errorf("expected name to start with 'Ali Veli', got %q", record.Name)
	}
}

func TestExtract_EmailDomainNotTakenAsHandle(t *testing.T) {
	// The "@x.com" inside the email must not be claimed by the handle matcher.
	record, _ := Extract("ali@x.com")
	if record.SocialHandle != "" {
		t.Errorf("expected no handle, got %q", record.SocialHandle)
	}
}

func TestExtract_FirstMatchWins(t *testing.T) {
	record, _ := Extract("birinci@x.com ikinci@y.com 0555 111 22 33 0555 999 88 77")
	if record.Email != "birinci@x.com" {
		t.Errorf("expected first email, got %q", record.Email)
	}
	if record.Phone != "0555 111 22 33" {
		t.Errorf("expected first phone, got %q", record.Phone)
	}
}

func TestExtract_EmptyAndWhitespace(t *testing.T) {
	for _, in := range []string{"", "   ", "\n\t "} {
		record, ok := Extract(in)
		if ok {
			t.Errorf("%q: expected insufficient", in)
		}
		if record.Phone != "" || record.Email != "" || record.SocialHandle != "" || record.Name != "" {
			t.Errorf("%q: expected all-empty record, got %+v", in, record)
		}
	}
}

func TestExtract_NameCappedAtFourTokens(t *testing.T) {
	record, _ := Extract("Ayşe Fatma Hayriye Zeynep Gül Hanım 0555 123 45 67")
	tokens := strings.Fields(record.Name)
	if len(tokens) != 4 {
		t.Errorf("expected 4 name tokens, got %d (%q)", len(tokens), record.Name)
	}
}

func TestExtract_DiacriticsPreservedInName(t *testing.T) {
	record, _ := Extract("Gül Şahin gul@ornek.com")
	if !strings.Contains(record.Name, "Gül") || !strings.Contains(record.Name, "Şahin") {
		t.Errorf("expected diacritics preserved, got %q", record.Name)
	}
}

func TestExtract_NeverPanics(t *testing.T) {
	inputs := []string{
		"@@@@",
		"@ab",
		"++++90",
		strings.Repeat("a", 10000),
		"🔥🔥🔥 0555",
		"名前 です",
	}
	for _, in := range inputs {
		record, _ := Extract(in)
		if record.RawText != strings.TrimSpace(in) {
			t.Errorf("raw text not preserved for %q", in)
		}
	}
}
