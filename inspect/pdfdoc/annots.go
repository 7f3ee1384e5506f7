package pdfdoc

import (
	"bytes"
	"fmt"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"doc-inspector/inspect/urls"
	"doc-inspector/logger"
)

func init() {
	api.DisableConfigDir()
}

type linkCollector struct {
	name    string
	collect func(data []byte) ([]string, error)
}

// Collectors are tried in order until one reads the annotations.
var linkCollectors = []linkCollector{
	{"pdfcpu", pdfcpuLinks},
	{"object graph", objectGraphLinks},
}

// LinkAnnotations returns the sorted, distinct URIs of link annotations.
// Unreadable annotation trees yield nil.
func LinkAnnotations(data []byte) []string {
	for _, c := range linkCollectors {
		links, err := c.collect(data)
		if err != nil {
			logger.Debug("link annotations unavailable", "collector", c.name, "err", err)
			continue
		}
		return links
	}
	return nil
}

func pdfcpuLinks(data []byte) (links []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdfcpu: %v", r)
		}
	}()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	annots, err := api.Annotations(bytes.NewReader(data), nil, conf)
	if err != nil {
		return nil, err
	}

	set := urls.Set{}
	for _, pageAnnots := range annots {
		linkAnnots, ok := pageAnnots[model.AnnLink]
		if !ok {
			continue
		}
		for _, renderer := range linkAnnots.Map {
			link, ok := renderer.(model.LinkAnnotation)
			if !ok || link.URI == "" {
				continue
			}
			set.Add(link.URI)
		}
	}
	return set.Sorted(), nil
}

// objectGraphLinks walks /Annots of every page: /Subtype /Link with an /A
// action carrying /URI.
func objectGraphLinks(data []byte) (links []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf object graph: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	set := urls.Set{}
	for _, page := range pageLeaves(reader, len(data)) {
		annots := page.Key("Annots")
		for j := 0; j < annots.Len(); j++ {
			a := annots.Index(j)
			if a.Key("Subtype").Name() != "Link" {
				continue
			}
			if uri := a.Key("A").Key("URI"); uri.Kind() == pdf.String {
				set.Add(uri.RawString())
			}
		}
	}
	return set.Sorted(), nil
}
