package docstore

import (
	"context"

	"learnpath-backend/application/ports"
	"learnpath-backend/domain/core/entities"
	"learnpath-backend/pkg/errors"

	"go.uber.org/zap"
)

// PathRepository implements ports.PathRepository on top of a DocumentStore
type PathRepository struct {
	store  ports.DocumentStore
	logger *zap.Logger
}

// NewPathRepository creates a new PathRepository
func NewPathRepository(store ports.DocumentStore, logger *zap.Logger) *PathRepository {
	return &PathRepository{
		store:  store,
		logger: logger,
	}
}

// ListSummaries returns all paths as (id, name) pairs sorted by name
func (r *PathRepository) ListSummaries(ctx context.Context) ([]ports.PathSummary, error) {
	records, err := r.store.Query(ctx, ports.Query{
		Kind:      ports.KindLearningPath,
		SortField: propName,
	})
	if err != nil {
		return nil, errors.Wrap(err, "list path summaries")
	}

	summaries := make([]ports.PathSummary, 0, len(records))
	for _, rec := range records {
		name, err := stringProp(ports.KindLearningPath, rec.Props, propName)
		if err != nil {
			// One corrupt record must not take down the whole listing
			r.logger.Error("Skipping unmappable path record",
				zap.Int64("pathID", rec.ID),
				zap.Error(err),
			)
			continue
		}
		summaries = append(summaries, ports.PathSummary{ID: rec.ID, Name: name})
	}
	return summaries, nil
}

// ReplaceTree upserts the path record and destructively replaces the whole
// section subtree: existing sections are deleted by key and the supplied
// ones inserted, recursing the same delete-all/insert-all strategy into each
// section's items. Write amplification is traded for the guarantee that no
// orphaned child survives a restructuring edit.
//
// There is no rollback. Once the first write lands, any later failure is
// surfaced as a partial write; the operation is idempotent, so retrying the
// whole call is safe.
func (r *PathRepository) ReplaceTree(ctx context.Context, path *entities.LearningPath) error {
	if err := path.Validate(); err != nil {
		return err
	}

	r.logger.Info("Replacing path tree",
		zap.Int64("pathID", path.ID),
		zap.Int("sections", len(path.Sections)),
		zap.Int("items", path.TotalItems()),
	)

	if _, err := r.store.Put(ctx, ports.KindLearningPath, path.ID, pathToProps(path)); err != nil {
		return errors.Wrap(err, "store path record")
	}

	// The path record is written; everything below is partial on failure.
	existing, err := r.loadSectionRecords(ctx, path.ID)
	if err != nil {
		return errors.NewPartialWriteError("replace tree", err)
	}
	for _, rec := range existing {
		if err := r.store.Delete(ctx, ports.KindLearningSection, rec.ID); err != nil {
			return errors.NewPartialWriteError("replace tree", err)
		}
	}

	for _, section := range path.Sections {
		section.PathID = path.ID
		if err := r.replaceSection(ctx, section); err != nil {
			return errors.NewPartialWriteError("replace tree", err)
		}
	}

	return nil
}

// replaceSection stores one section record and replaces all of its items
func (r *PathRepository) replaceSection(ctx context.Context, section *entities.LearningSection) error {
	if _, err := r.store.Put(ctx, ports.KindLearningSection, section.ID, sectionToProps(section)); err != nil {
		return err
	}

	existing, err := r.store.Query(ctx, ports.Query{
		Kind:    ports.KindLearningItem,
		Filters: []ports.Filter{{Field: propLearningSection, Value: section.ID}},
	})
	if err != nil {
		return err
	}
	for _, rec := range existing {
		if err := r.store.Delete(ctx, ports.KindLearningItem, rec.ID); err != nil {
			return err
		}
	}

	for _, item := range section.Items {
		// Owner ids are derived data and only ever written here
		item.SectionID = section.ID
		item.PathID = section.PathID
		if _, err := r.store.Put(ctx, ports.KindLearningItem, item.ID, itemToProps(item)); err != nil {
			return err
		}
	}
	return nil
}

// Load fetches a path with its sections and items in sequence order
func (r *PathRepository) Load(ctx context.Context, id int64) (*entities.LearningPath, error) {
	props, err := r.store.Get(ctx, ports.KindLearningPath, id)
	if err != nil {
		return nil, err
	}

	path, err := pathFromRecord(ports.Record{ID: id, Props: props})
	if err != nil {
		return nil, err
	}

	sections, err := r.loadSections(ctx, id)
	if err != nil {
		return nil, err
	}
	path.Sections = sections

	return path, nil
}

// loadSectionRecords fetches the raw section records owned by a path
func (r *PathRepository) loadSectionRecords(ctx context.Context, pathID int64) ([]ports.Record, error) {
	return r.store.Query(ctx, ports.Query{
		Kind:      ports.KindLearningSection,
		SortField: propSequence,
		Filters:   []ports.Filter{{Field: propLearningPath, Value: pathID}},
	})
}

// loadSections fetches a path's sections with their items, sequence-ordered
func (r *PathRepository) loadSections(ctx context.Context, pathID int64) ([]*entities.LearningSection, error) {
	records, err := r.loadSectionRecords(ctx, pathID)
	if err != nil {
		return nil, err
	}

	sections := make([]*entities.LearningSection, 0, len(records))
	for _, rec := range records {
		section, err := sectionFromRecord(rec)
		if err != nil {
			return nil, err
		}

		items, err := r.loadItems(ctx, section.ID)
		if err != nil {
			return nil, err
		}
		section.Items = items

		sections = append(sections, section)
	}
	return sections, nil
}

// loadItems fetches a section's items in sequence order
func (r *PathRepository) loadItems(ctx context.Context, sectionID int64) ([]*entities.LearningItem, error) {
	records, err := r.store.Query(ctx, ports.Query{
		Kind:      ports.KindLearningItem,
		SortField: propSequence,
		Filters:   []ports.Filter{{Field: propLearningSection, Value: sectionID}},
	})
	if err != nil {
		return nil, err
	}

	items := make([]*entities.LearningItem, 0, len(records))
	for _, rec := range records {
		item, err := itemFromRecord(rec)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// LoadItem fetches a single item by key
func (r *PathRepository) LoadItem(ctx context.Context, itemID int64) (*entities.LearningItem, error) {
	props, err := r.store.Get(ctx, ports.KindLearningItem, itemID)
	if err != nil {
		return nil, err
	}
	return itemFromRecord(ports.Record{ID: itemID, Props: props})
}

// SaveItem upserts a single item record using its denormalized owner ids,
// leaving siblings untouched
func (r *PathRepository) SaveItem(ctx context.Context, item *entities.LearningItem) error {
	if _, err := r.store.Put(ctx, ports.KindLearningItem, item.ID, itemToProps(item)); err != nil {
		return errors.Wrap(err, "store item record")
	}
	r.logger.Debug("Item saved",
		zap.Int64("itemID", item.ID),
		zap.Int64("sectionID", item.SectionID),
		zap.Int64("pathID", item.PathID),
		zap.Int64("ratingCount", item.RatingCount),
		zap.Int64("ratingTotal", item.RatingTotal),
	)
	return nil
}
