package funnel

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"stageflow/internal/config"
)

func TestNewTable_KeepsConfigOrder(t *testing.T) {
	table := NewTable(config.Default().Stages)
	order := table.Order()
	if order[0] != "Applications" {
		t.Errorf("first stage = %q, want Applications", order[0])
	}
	if table.Category("Rejected") != config.CategoryRejection {
		t.Errorf("Rejected category = %q", table.Category("Rejected"))
	}
	if table.Recognized("Ghosted") {
		t.Error("unlisted stage should not be recognized")
	}
}

func TestWithSources_InsertsSortedAfterRoot(t *testing.T) {
	table := NewTable(config.Default().Stages)
	got := table.WithSources([]string{"LinkedIn", "Career Fair", "", "LinkedIn"})

	order := got.Order()
	want := []string{"Applications", "Career Fair", "LinkedIn", "No reply"}
	if diff := cmp.Diff(want, order[:4]); diff != "" {
		t.Errorf("order prefix mismatch (-want +got):\n%s", diff)
	}
	if got.Category("LinkedIn") != config.CategorySource {
		t.Errorf("LinkedIn category = %q, want source", got.Category("LinkedIn"))
	}
	// original table untouched
	if table.Recognized("LinkedIn") {
		t.Error("WithSources must not mutate the receiver")
	}
}

func TestWithSources_ExistingStagesKeepPosition(t *testing.T) {
	stages := append([]config.Stage{}, config.Default().Stages...)
	stages = append(stages, config.Stage{Name: "Referral", Category: config.CategorySource})
	table := NewTable(stages)

	got := table.WithSources([]string{"Referral", "LinkedIn"})
	order := got.Order()
	// Referral was already configured at the end; only LinkedIn is inserted
	if order[1] != "LinkedIn" {
		t.Errorf("order[1] = %q, want LinkedIn", order[1])
	}
	if order[len(order)-1] != "Referral" {
		t.Errorf("configured source should keep its position, tail = %q", order[len(order)-1])
	}
}

func TestRootAndNoReply_Fallbacks(t *testing.T) {
	table := NewTable([]config.Stage{
		{Name: "Applied", Category: config.CategoryIntermediate},
	})
	if got := table.Root(); got != "Applications" {
		t.Errorf("Root fallback = %q", got)
	}
	if got := table.NoReply(); got != "No reply" {
		t.Errorf("NoReply fallback = %q", got)
	}
}
