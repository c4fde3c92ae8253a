package formula

import "testing"

func TestExtractReferencesOrderAndShape(t *testing.T) {
	refs := ExtractReferences("[KPI:a]+[KPI:b]")
	if len(refs) != 2 {
		t.Fatalf("expected 2 references, got %d", len(refs))
	}
	if refs[0].Identifier != "a" || refs[0].OriginalMatch != "[KPI:a]" || refs[0].IsID {
		t.Fatalf("unexpected first reference: %+v", refs[0])
	}
	if refs[1].Identifier != "b" || refs[1].OriginalMatch != "[KPI:b]" || refs[1].IsID {
		t.Fatalf("unexpected second reference: %+v", refs[1])
	}
}

func TestExtractReferencesUUID(t *testing.T) {
	id := "0b8c6c6e-3f44-4d38-9c1a-76d2f8a1b23e"
	refs := ExtractReferences("[KPI:" + id + "] * 2")
	if len(refs) != 1 {
		t.Fatalf("expected 1 reference, got %d", len(refs))
	}
	if !refs[0].IsID || refs[0].Identifier != id {
		t.Fatalf("expected uuid reference, got %+v", refs[0])
	}
}

func TestExtractReferencesDuplicatesKept(t *testing.T) {
	refs := ExtractReferences("[KPI:x]+[KPI:x]")
	if len(refs) != 2 {
		t.Fatalf("expected duplicates preserved, got %d references", len(refs))
	}
}

func TestExtractReferencesMalformed(t *testing.T) {
	if refs := ExtractReferences("[KPI:] + KPI:a] + [kpi:b] + [KPI:unclosed"); len(refs) != 0 {
		t.Fatalf("expected no references, got %+v", refs)
	}
}

func TestSubstitute(t *testing.T) {
	five := "5"
	three := "3"
	got := Substitute("[KPI:a]+[KPI:b]", map[string]*string{"a": &five, "b": &three})
	if got != "5+3" {
		t.Fatalf("expected 5+3, got %q", got)
	}
}

func TestSubstituteNilValueBecomesZero(t *testing.T) {
	got := Substitute("[KPI:a]*10", map[string]*string{"a": nil})
	if got != "0*10" {
		t.Fatalf("expected 0*10, got %q", got)
	}
}

func TestSubstituteMissingKeyLeavesToken(t *testing.T) {
	five := "5"
	got := Substitute("[KPI:a]+[KPI:b]", map[string]*string{"a": &five})
	if got != "5+[KPI:b]" {
		t.Fatalf("expected token left untouched, got %q", got)
	}
}

func TestSubstituteRepeatedToken(t *testing.T) {
	two := "2"
	got := Substitute("[KPI:a]+[KPI:a]", map[string]*string{"a": &two})
	if got != "2+2" {
		t.Fatalf("expected 2+2, got %q", got)
	}
}
