package forecast

import (
	"testing"

	"github.com/Dan9191/advisory-service/internal/models"
	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, name string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(dec(want)) {
		t.Fatalf("unexpected %s: got %s want %s", name, got, want)
	}
}

func TestComputeEmptyInput(t *testing.T) {
	f := Compute(nil, nil)
	assertDecimal(t, "active", f.ActiveRevenue, "0")
	assertDecimal(t, "renewal", f.RenewalRevenue, "0")
	assertDecimal(t, "pipeline", f.PipelineRevenue, "0")
	assertDecimal(t, "total", f.Total, "0")
	if len(f.Sections) != 3 {
		t.Fatalf("expected three sections, got %d", len(f.Sections))
	}
	for _, s := range f.Sections {
		if s.Count != 0 || !s.Subtotal.IsZero() {
			t.Fatalf("unexpected non-empty section: %#v", s)
		}
	}
}

func TestComputeActiveMonthly(t *testing.T) {
	f := Compute([]models.Contract{
		{Status: models.ContractActive, BillingFrequency: models.BillingMonthly, Amount: dec("100")},
	}, nil)
	assertDecimal(t, "active", f.ActiveRevenue, "1200")
	assertDecimal(t, "total", f.Total, "1200")
	if f.Sections[0].Count != 1 {
		t.Fatalf("unexpected active count: %d", f.Sections[0].Count)
	}
}

func TestComputeRenewalDerating(t *testing.T) {
	f := Compute([]models.Contract{
		{Status: models.ContractRenewalPending, BillingFrequency: models.BillingAnnual, Amount: dec("1000")},
	}, nil)
	assertDecimal(t, "renewal", f.RenewalRevenue, "700")
	if f.Sections[1].Count != 1 || f.Sections[1].ProbabilityLabel != "70%" {
		t.Fatalf("unexpected renewal section: %#v", f.Sections[1])
	}
}

func TestComputeLegacyRenewalSpelling(t *testing.T) {
	f := Compute([]models.Contract{
		{Status: "pending_renewal", BillingFrequency: models.BillingQuarterly, Amount: dec("250")},
	}, nil)
	assertDecimal(t, "renewal", f.RenewalRevenue, "700")
}

func TestComputePipelineWeighting(t *testing.T) {
	f := Compute(nil, []models.Client{
		{PipelineStage: models.StageProposal, EstimatedValue: dec("10000")},
		{PipelineStage: models.StageNegotiation, EstimatedValue: dec("20000")},
	})
	assertDecimal(t, "pipeline", f.PipelineRevenue, "15000")
	if f.Sections[2].Count != 2 || f.Sections[2].ProbabilityLabel != "30-60%" {
		t.Fatalf("unexpected pipeline section: %#v", f.Sections[2])
	}
}

func TestComputeExcludesOtherStatusesAndStages(t *testing.T) {
	f := Compute([]models.Contract{
		{Status: models.ContractCancelled, BillingFrequency: models.BillingMonthly, Amount: dec("999")},
		{Status: "", Amount: dec("50")},
	}, []models.Client{
		{PipelineStage: models.StageClosedWon, EstimatedValue: dec("50000")},
		{PipelineStage: models.StageLead, EstimatedValue: dec("1000")},
	})
	assertDecimal(t, "total", f.Total, "0")
	for _, s := range f.Sections {
		if s.Count != 0 {
			t.Fatalf("excluded records were counted: %#v", s)
		}
	}
}

func TestComputeUnknownFrequencyIsAnnual(t *testing.T) {
	f := Compute([]models.Contract{
		{Status: models.ContractActive, BillingFrequency: "weekly", Amount: dec("500")},
		{Status: models.ContractActive, Amount: dec("20")},
	}, nil)
	assertDecimal(t, "active", f.ActiveRevenue, "520")
}

func TestComputeMissingAmountsAreZero(t *testing.T) {
	f := Compute([]models.Contract{
		{Status: models.ContractActive, BillingFrequency: models.BillingMonthly},
	}, []models.Client{
		{PipelineStage: models.StageProposal},
	})
	assertDecimal(t, "total", f.Total, "0")
	if f.Sections[0].Count != 1 || f.Sections[2].Count != 1 {
		t.Fatalf("zero-valued records should still be counted: %#v", f.Sections)
	}
}

func TestComputeNegativeAmountsPropagate(t *testing.T) {
	f := Compute([]models.Contract{
		{Status: models.ContractActive, BillingFrequency: models.BillingSemiannual, Amount: dec("-10")},
	}, nil)
	assertDecimal(t, "active", f.ActiveRevenue, "-20")
}

func TestComputeTotalIsAdditive(t *testing.T) {
	f := Compute([]models.Contract{
		{Status: models.ContractActive, BillingFrequency: models.BillingBimonthly, Amount: dec("333.33")},
		{Status: models.ContractRenewalPending, BillingFrequency: models.BillingMonthly, Amount: dec("0.01")},
	}, []models.Client{
		{PipelineStage: models.StageProposal, EstimatedValue: dec("123.45")},
		{PipelineStage: models.StageNegotiation, EstimatedValue: dec("0.07")},
	})
	sum := f.ActiveRevenue.Add(f.RenewalRevenue).Add(f.PipelineRevenue)
	if !f.Total.Equal(sum) {
		t.Fatalf("total %s is not the sum %s", f.Total, sum)
	}
	assertDecimal(t, "active", f.ActiveRevenue, "1999.98")
	assertDecimal(t, "renewal", f.RenewalRevenue, "0.084")
	assertDecimal(t, "pipeline", f.PipelineRevenue, "37.077")
}

func TestComputeIsDeterministic(t *testing.T) {
	contracts := []models.Contract{{Status: models.ContractActive, BillingFrequency: models.BillingQuarterly, Amount: dec("10")}}
	first := Compute(contracts, nil)
	second := Compute(contracts, nil)
	if !first.Total.Equal(second.Total) {
		t.Fatalf("repeat call changed total: %s vs %s", first.Total, second.Total)
	}
	if !contracts[0].Amount.Equal(dec("10")) {
		t.Fatalf("input was mutated: %#v", contracts[0])
	}
}

func TestWeightFallback(t *testing.T) {
	if _, ok := Weight(models.StageClosedLost); ok {
		t.Fatal("closed_lost must not take part in the pipeline")
	}
	w, ok := Weight(models.StageNegotiation)
	if !ok || !w.Equal(dec("0.6")) {
		t.Fatalf("unexpected negotiation weight: %s %v", w, ok)
	}
}
