package workflow

import (
	"errors"
	"fmt"
)

// ErrUnknownWorkflow is returned for workflow names outside the catalog
var ErrUnknownWorkflow = errors.New("unknown workflow")

// Workflow names known to the version lifecycle
const (
	VersioningWF          = "versioningWF"
	AccessionWF           = "accessionWF"
	AssemblyWF            = "assemblyWF"
	WASCrawlPreassemblyWF = "wasCrawlPreassemblyWF"
	WASSeedPreassemblyWF  = "wasSeedPreassemblyWF"
	GISDeliveryWF         = "gisDeliveryWF"
	GISAssemblyWF         = "gisAssemblyWF"
	OCRWF                 = "ocrWF"
	SpeechToTextWF        = "speechToTextWF"
)

var stepTemplates = map[string][]string{
	VersioningWF: {"start-version", "submit-version", "start-accession"},
	AccessionWF: {
		"start-accession", "stage", "technical-metadata", "shelve", "publish",
		"sdr-ingest-transfer", "sdr-ingest-received", "reset-workspace", "end-accession",
	},
	AssemblyWF:            {"start-assembly", "jp2-create", "checksum-compute", "exif-collect", "accessioning-initiate"},
	WASCrawlPreassemblyWF: {"build-was-crawl-druid-tree", "metadata-extractor", "end-was-crawl-preassembly"},
	WASSeedPreassemblyWF:  {"build-was-seed-druid-tree", "thumbnail-generator", "end-was-seed-preassembly"},
	GISDeliveryWF: {
		"start-gis-delivery-workflow", "load-vector", "load-raster",
		"finish-gis-delivery-workflow", "start-gis-assembly-workflow",
	},
	GISAssemblyWF:  {"start-gis-assembly-workflow", "extract-boundingbox", "generate-structural", "start-accession-workflow"},
	OCRWF:          {"start-ocr", "fetch-files", "ocr-create", "end-ocr"},
	SpeechToTextWF: {"start-stt", "fetch-files", "stt-create", "end-stt"},
}

// StepTemplate returns the ordered step names for a workflow
func StepTemplate(name string) ([]string, error) {
	steps, ok := stepTemplates[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownWorkflow, name)
	}
	cp := make([]string, len(steps))
	copy(cp, steps)
	return cp, nil
}

// IsKnown reports whether the workflow name is in the catalog
func IsKnown(name string) bool {
	_, ok := stepTemplates[name]
	return ok
}
