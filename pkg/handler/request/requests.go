package request

import (
	"fmt"

	"github.com/yumyai/snpseek/pkg/model"
)

// GenotypeSearchRequest drives the range and SNP-list searches. A non-empty
// SnpList selects SNP-list mode.
type GenotypeSearchRequest struct {
	ReferenceGenome    string   `json:"referenceGenome"`
	VarietySet         string   `json:"varietySet"`
	SnpSet             string   `json:"snpSet"`
	Subpopulation      string   `json:"subpopulation"`
	VarietyList        []string `json:"varietyList"`
	SnpList            []string `json:"snpList"`
	Contig             string   `json:"contig"`
	Start              int      `json:"start"`
	End                int      `json:"end"`
	Page               int      `json:"page"`
	AskTotalPages      bool     `json:"askTotalPages"`
	AskReferenceGenome bool     `json:"askReferenceGenome"`
}

func (r GenotypeSearchRequest) Mode() model.Mode {
	if len(r.SnpList) > 0 {
		return model.ModeSnpList
	}
	return model.ModeRange
}

func (r GenotypeSearchRequest) Criteria() model.SearchCriteria {
	return model.SearchCriteria{
		ReferenceGenome:  r.ReferenceGenome,
		VarietySet:       r.VarietySet,
		SnpSet:           r.SnpSet,
		Subpopulation:    r.Subpopulation,
		VarietyIDs:       r.VarietyList,
		SnpKeys:          r.SnpList,
		Contig:           r.Contig,
		Start:            r.Start,
		End:              r.End,
		Page:             r.Page,
		WantTotalPages:   r.AskTotalPages,
		WantReferenceRow: r.AskReferenceGenome,
	}
}

// GenotypeSearchLocusListRequest carries one window per index of the
// parallel Contigs, Starts and Ends lists.
type GenotypeSearchLocusListRequest struct {
	ReferenceGenome    string   `json:"referenceGenome"`
	VarietySet         string   `json:"varietySet"`
	SnpSet             string   `json:"snpSet"`
	Subpopulation      string   `json:"subpopulation"`
	VarietyList        []string `json:"varietyList"`
	Contigs            []string `json:"contigs"`
	Starts             []int    `json:"starts"`
	Ends               []int    `json:"ends"`
	Page               int      `json:"page"`
	AskTotalPages      bool     `json:"askTotalPages"`
	AskReferenceGenome bool     `json:"askReferenceGenome"`
}

func (r GenotypeSearchLocusListRequest) Criteria() (model.SearchCriteria, error) {
	if len(r.Starts) != len(r.Contigs) || len(r.Ends) != len(r.Contigs) {
		return model.SearchCriteria{}, fmt.Errorf("%w: %d contigs, %d starts, %d ends",
			model.ErrInvalidCriteria, len(r.Contigs), len(r.Starts), len(r.Ends))
	}
	loci := make([]model.Locus, len(r.Contigs))
	for i := range r.Contigs {
		loci[i] = model.Locus{Contig: r.Contigs[i], Start: r.Starts[i], End: r.Ends[i]}
	}
	return model.SearchCriteria{
		ReferenceGenome:  r.ReferenceGenome,
		VarietySet:       r.VarietySet,
		SnpSet:           r.SnpSet,
		Subpopulation:    r.Subpopulation,
		VarietyIDs:       r.VarietyList,
		Loci:             loci,
		Page:             r.Page,
		WantTotalPages:   r.AskTotalPages,
		WantReferenceRow: r.AskReferenceGenome,
	}, nil
}

type ExcelRequest struct {
	GenotypeSearchRequest GenotypeSearchRequest `json:"genotypeSearchRequest"`
	VarietyListIDs        []string              `json:"varietyListIds"`
}

type ExcelLocusRequest struct {
	GenotypeSearchLocusListRequest GenotypeSearchLocusListRequest `json:"genotypeSearchLocusListRequest"`
	VarietyListIDs                 []string                       `json:"varietyListIds"`
}

type ItemsRequest struct {
	Items      []string `json:"items"`
	VarietySet string   `json:"varietySet"`
}

type VarietiesRequest struct {
	IDs []string `json:"ids"`
}

type PositionsRequest struct {
	ChromosomePositions []string `json:"chromosomePositions"`
	ReferenceName       string   `json:"referenceName"`
	SnpSet              string   `json:"snpSet"`
}
