package guideline

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func sampleDataset() *Dataset {
	cols := []string{ColCitationCode, ColCaseStudy, ColTitle, ColTheme, ColImpact, ColImageURLs}
	return NewDataset(cols, [][]string{
		{"#1D", "Shop", "Checkout flow", "Checkout", "2", "a.png, b.png"},
		{"#1M", "Shop", "Checkout flow", "Checkout", "oops"},
		{"#2A", "Bank", "Login", "Account", "-1", ""},
	})
}

func TestNewDatasetDerivesTypedFields(t *testing.T) {
	ds := sampleDataset()
	rows := ds.Rows()
	if len(rows) != 3 {
		t.Fatalf("Len = %d", len(rows))
	}
	if !rows[0].HasImpact || rows[0].Impact != 2 {
		t.Errorf("row 0 impact = %v %v", rows[0].Impact, rows[0].HasImpact)
	}
	if rows[1].HasImpact {
		t.Error("row 1 impact should be missing")
	}
	if diff := cmp.Diff([]string{"a.png", "b.png"}, rows[0].ImageURLs); diff != "" {
		t.Errorf("image urls (-want +got):\n%s", diff)
	}
	if rows[1].Get(ColImageURLs) != "" {
		t.Error("short record should be padded with blanks")
	}
	if rows[2].Platform() != App {
		t.Errorf("platform = %q", rows[2].Platform())
	}
}

func TestRecords(t *testing.T) {
	recs := sampleDataset().Records()
	if recs[0][ColImpact] != 2.0 {
		t.Errorf("impact = %#v", recs[0][ColImpact])
	}
	if recs[1][ColImpact] != nil {
		t.Errorf("missing impact = %#v", recs[1][ColImpact])
	}
	if recs[2][ColImageURLs] != nil {
		t.Errorf("blank cell = %#v", recs[2][ColImageURLs])
	}
}

func TestProjectKeepsExistingColumns(t *testing.T) {
	p := sampleDataset().Project([]string{ColTitle, "Nope", ColCitationCode})
	if diff := cmp.Diff([]string{ColTitle, ColCitationCode}, p.Columns()); diff != "" {
		t.Errorf("columns (-want +got):\n%s", diff)
	}
	if p.Rows()[2].CitationCode != "#2A" {
		t.Error("projection lost citation code")
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := sampleDataset().WriteCSV(&buf); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	recs, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(recs) != 4 || recs[1][5] != "a.png, b.png" {
		t.Errorf("unexpected csv: %v", recs)
	}
}

func TestDistinctAndFind(t *testing.T) {
	ds := sampleDataset()
	if diff := cmp.Diff([]string{"Shop", "Bank"}, ds.Distinct(ColCaseStudy)); diff != "" {
		t.Errorf("distinct (-want +got):\n%s", diff)
	}
	if _, ok := ds.FindByCitation(" #2A "); !ok {
		t.Error("FindByCitation failed")
	}
	if ds.Distinct("Nope") != nil {
		t.Error("distinct of absent column should be nil")
	}
}
