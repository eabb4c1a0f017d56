package orchestrator

import (
	"context"
	"log/slog"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/blocks"
	"github.com/starford/ansuz/internal/fingerprint"
	"github.com/starford/ansuz/internal/hierarchy"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/parser"
	"github.com/starford/ansuz/internal/tagpath"
)

// Scan lists the vault, reads every document, and builds the schema: the tag
// tree, one descriptor per index document (or per document still carrying a
// stale block marker), and a content hash per descriptor document. Malformed
// tag metadata is logged and the document treated as tag-less.
func (o *Orchestrator) Scan(ctx context.Context) (*Schema, error) {
	docs, err := o.vault.List(o.cfg.ExcludedFolders)
	if err != nil {
		return nil, err
	}

	s := &Schema{
		Root:          hierarchy.NewRoot(),
		ContentHashes: make(map[string]int32),
	}
	descIdx := make(map[string]int)

	descriptorFor := func(doc int) *Descriptor {
		path := docs[doc].Path
		if i, ok := descIdx[path]; ok {
			return &s.Descriptors[i]
		}
		s.Descriptors = append(s.Descriptors, Descriptor{Doc: docs[doc]})
		descIdx[path] = len(s.Descriptors) - 1
		return &s.Descriptors[len(s.Descriptors)-1]
	}

	for i := range docs {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		raw, err := o.vault.Read(docs[i].Path)
		if err != nil {
			o.logger.Warn("scan: read failed",
				slog.String("path", docs[i].Path),
				slog.String("error", err.Error()))
			continue
		}

		res := parser.Parse([]byte(raw))
		if res.MalformedTags {
			o.logger.Warn("scan: malformed tag metadata, treating as tag-less",
				slog.String("path", docs[i].Path))
		}
		docs[i].Title = res.Title

		hasPriority := false
		for _, t := range res.Tags {
			if tagpath.Canonicalize(t) == o.prioTag {
				hasPriority = true
				break
			}
		}

		carrier := false
		for _, t := range res.Tags {
			p := tagpath.Canonicalize(t)
			if p == "" {
				continue
			}
			switch tagpath.LastComponent(p) {
			case o.indexTag:
				target := tagpath.Parent(p)
				o.addToTree(s.Root, target, docs[i], hasPriority, true)
				d := descriptorFor(i)
				d.IndexTags = append(d.IndexTags, target)
				carrier = true
			case o.metaTag:
				target := tagpath.Parent(p)
				o.addToTree(s.Root, target, docs[i], hasPriority, true)
				d := descriptorFor(i)
				d.MetaTags = append(d.MetaTags, target)
				carrier = true
			default:
				o.addToTree(s.Root, p, docs[i], hasPriority, false)
			}
		}

		if carrier {
			s.ContentHashes[docs[i].Path] = fingerprint.Hash32(raw)
		} else if blocks.HasMarker(raw) {
			// Stale blocks with no index tags left: descriptor with no tag
			// paths, so the next reconcile removes them.
			descriptorFor(i)
			s.ContentHashes[docs[i].Path] = fingerprint.Hash32(raw)
		}
	}

	s.Root.SortAll()
	return s, nil
}

func (o *Orchestrator) addToTree(root *hierarchy.Node, path string, doc models.DocRef, hasPriority, isCarrier bool) {
	if !root.AddDocument(path, doc, hasPriority, isCarrier) {
		o.logger.Error("scan: tag path rejected by tree",
			slog.String("path", doc.Path),
			slog.String("tag", path),
			slog.String("error", apperr.ErrPathContract.Error()))
	}
}
