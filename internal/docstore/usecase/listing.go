package usecase

import (
	"context"

	"firebase-kit/internal/docstore/domain/model"
	"firebase-kit/internal/docstore/path"
	apperrors "firebase-kit/internal/shared/errors"
	"firebase-kit/internal/shared/outcome"
)

// ReadAll returns every document directly inside the collection keyed by id.
// Each child is read through a wrapper scoped to it. The first failing read
// fails the whole call; a child deleted between listing and reading is
// skipped.
func (c *Collection) ReadAll(ctx context.Context) outcome.Outcome[map[string]model.Record] {
	const op = "docstore.read_all"
	return outcome.Capture(op, func() (map[string]model.Record, error) {
		return c.readChildren(ctx, op, nil)
	})
}

// ReadWhere is ReadAll restricted to documents matching a CEL predicate over
// record and id, for example `record.age >= 18 && id != "root"`. Documents
// whose evaluation fails, such as a missing field, do not match.
func (c *Collection) ReadWhere(ctx context.Context, expression string) outcome.Outcome[map[string]model.Record] {
	const op = "docstore.read_where"
	return outcome.Capture(op, func() (map[string]model.Record, error) {
		filter, err := CompileFilter(expression)
		if err != nil {
			return nil, err
		}
		return c.readChildren(ctx, op, filter)
	})
}

func (c *Collection) readChildren(ctx context.Context, op string, filter *Filter) (map[string]model.Record, error) {
	ref, err := c.collectionRef()
	if err != nil {
		return nil, err
	}
	log := c.logFor(ctx, op, ref)
	records := make(map[string]model.Record)

	for id, err := range path.EnumerateChildPaths(ctx, c.store, ref) {
		if err != nil {
			log.Errorf("Failed to list documents: %v", err)
			return nil, err
		}

		child := c.Scoped(id).Read(ctx, "")
		if !child.OK {
			if apperrors.IsNotFound(child.Err()) {
				continue
			}
			return nil, child.Err()
		}

		if filter != nil {
			ok, err := filter.Match(id, child.Payload)
			if err != nil {
				log.Debugf("Filter skipped %s: %v", id, err)
				continue
			}
			if !ok {
				continue
			}
		}
		records[id] = child.Payload
	}

	log.Debugf("Read %d documents", len(records))
	return records, nil
}

// deepFrame is a collection waiting to be listed during ReadAllDeep.
type deepFrame struct {
	ref   model.Reference
	depth int
}

// ReadAllDeep returns every document in the collection and in all of its
// sub-collections up to maxDepth levels below it, keyed by the path relative
// to the collection ("u1", "u1/orders/o1"). maxDepth <= 0 uses the
// configured default.
func (c *Collection) ReadAllDeep(ctx context.Context, maxDepth int) outcome.Outcome[map[string]model.Record] {
	const op = "docstore.read_all_deep"
	if maxDepth <= 0 {
		maxDepth = c.maxDepth
	}

	return outcome.Capture(op, func() (map[string]model.Record, error) {
		root, err := c.collectionRef()
		if err != nil {
			return nil, err
		}
		log := c.logFor(ctx, op, root)
		records := make(map[string]model.Record)
		stack := []deepFrame{{ref: root}}

		for len(stack) > 0 {
			frame := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			for id, err := range path.EnumerateChildPaths(ctx, c.store, frame.ref) {
				if err != nil {
					return nil, err
				}
				doc := frame.ref.Child(id)

				rec, err := c.store.GetDocument(ctx, doc)
				switch {
				case err == nil:
					records[doc.RelativeTo(root)] = rec
				case !apperrors.IsNotFound(err):
					return nil, err
				}

				if frame.depth >= maxDepth {
					continue
				}
				subs, err := c.store.SubCollectionIDs(ctx, doc)
				if err != nil {
					return nil, err
				}
				for _, sub := range subs {
					stack = append(stack, deepFrame{ref: doc.Child(sub), depth: frame.depth + 1})
				}
			}
		}

		log.Debugf("Read %d documents across sub-collections", len(records))
		return records, nil
	})
}
