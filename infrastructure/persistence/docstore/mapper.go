package docstore

import (
	"fmt"

	"learnpath-backend/application/ports"
	"learnpath-backend/domain/core/entities"
	"learnpath-backend/pkg/errors"
)

// Persisted property names per kind. These match the record shapes of the
// original store deployment byte-for-byte and must stay stable.
const (
	propName            = "name"
	propDescription     = "description"
	propSequence        = "sequence"
	propURL             = "url"
	propLearningPath    = "learningPath"
	propLearningSection = "learningSection"
	propLearningItem    = "learningItem"
	propUserID          = "userId"
	propRating          = "rating"
	propCompleted       = "completed"
	propRatingCount     = "ratingCount"
	propRatingTotal     = "ratingTotal"
)

// The mapper is pure: a bidirectional, lossless translation between domain
// entities and generic property bags. A required property that is absent or
// of the wrong type yields a mapping error for that record.

func pathToProps(p *entities.LearningPath) ports.Properties {
	return ports.Properties{
		propName:        p.Name,
		propDescription: p.Description,
	}
}

func pathFromRecord(rec ports.Record) (*entities.LearningPath, error) {
	name, err := stringProp(ports.KindLearningPath, rec.Props, propName)
	if err != nil {
		return nil, err
	}
	description, err := optionalStringProp(ports.KindLearningPath, rec.Props, propDescription)
	if err != nil {
		return nil, err
	}
	return entities.NewLearningPath(rec.ID, name, description), nil
}

func sectionToProps(s *entities.LearningSection) ports.Properties {
	return ports.Properties{
		propLearningPath: s.PathID,
		propName:         s.Name,
		propDescription:  s.Description,
		propSequence:     s.Sequence,
	}
}

func sectionFromRecord(rec ports.Record) (*entities.LearningSection, error) {
	pathID, err := intProp(ports.KindLearningSection, rec.Props, propLearningPath)
	if err != nil {
		return nil, err
	}
	name, err := stringProp(ports.KindLearningSection, rec.Props, propName)
	if err != nil {
		return nil, err
	}
	description, err := optionalStringProp(ports.KindLearningSection, rec.Props, propDescription)
	if err != nil {
		return nil, err
	}
	sequence, err := intProp(ports.KindLearningSection, rec.Props, propSequence)
	if err != nil {
		return nil, err
	}
	return entities.NewLearningSection(rec.ID, pathID, name, description, sequence), nil
}

func itemToProps(i *entities.LearningItem) ports.Properties {
	return ports.Properties{
		propLearningPath:    i.PathID,
		propLearningSection: i.SectionID,
		propName:            i.Name,
		propDescription:     i.Description,
		propSequence:        i.Sequence,
		propURL:             i.URL,
		propRatingCount:     i.RatingCount,
		propRatingTotal:     i.RatingTotal,
	}
}

func itemFromRecord(rec ports.Record) (*entities.LearningItem, error) {
	kind := ports.KindLearningItem

	pathID, err := intProp(kind, rec.Props, propLearningPath)
	if err != nil {
		return nil, err
	}
	sectionID, err := intProp(kind, rec.Props, propLearningSection)
	if err != nil {
		return nil, err
	}
	name, err := stringProp(kind, rec.Props, propName)
	if err != nil {
		return nil, err
	}
	description, err := optionalStringProp(kind, rec.Props, propDescription)
	if err != nil {
		return nil, err
	}
	sequence, err := intProp(kind, rec.Props, propSequence)
	if err != nil {
		return nil, err
	}
	url, err := optionalStringProp(kind, rec.Props, propURL)
	if err != nil {
		return nil, err
	}
	ratingCount, err := intProp(kind, rec.Props, propRatingCount)
	if err != nil {
		return nil, err
	}
	ratingTotal, err := intProp(kind, rec.Props, propRatingTotal)
	if err != nil {
		return nil, err
	}

	return &entities.LearningItem{
		ID:          rec.ID,
		SectionID:   sectionID,
		PathID:      pathID,
		Name:        name,
		Description: description,
		Sequence:    sequence,
		URL:         url,
		RatingCount: ratingCount,
		RatingTotal: ratingTotal,
	}, nil
}

func feedbackToProps(fb *entities.ItemFeedback) ports.Properties {
	return ports.Properties{
		propLearningPath:    fb.PathID,
		propLearningSection: fb.SectionID,
		propLearningItem:    fb.ItemID,
		propUserID:          fb.UserID,
		propRating:          fb.Rating,
		propCompleted:       fb.Completed,
	}
}

func feedbackFromRecord(rec ports.Record) (*entities.ItemFeedback, error) {
	kind := ports.KindItemFeedback

	pathID, err := intProp(kind, rec.Props, propLearningPath)
	if err != nil {
		return nil, err
	}
	sectionID, err := intProp(kind, rec.Props, propLearningSection)
	if err != nil {
		return nil, err
	}
	itemID, err := intProp(kind, rec.Props, propLearningItem)
	if err != nil {
		return nil, err
	}
	userID, err := stringProp(kind, rec.Props, propUserID)
	if err != nil {
		return nil, err
	}
	rating, err := intProp(kind, rec.Props, propRating)
	if err != nil {
		return nil, err
	}
	completed, err := boolProp(kind, rec.Props, propCompleted)
	if err != nil {
		return nil, err
	}

	return &entities.ItemFeedback{
		ID:        rec.ID,
		PathID:    pathID,
		SectionID: sectionID,
		ItemID:    itemID,
		UserID:    userID,
		Rating:    rating,
		Completed: completed,
	}, nil
}

// Typed property extraction. The store is schemaless, so this is the first
// place a missing or drifted field can be noticed.

func stringProp(kind string, props ports.Properties, key string) (string, error) {
	raw, ok := props[key]
	if !ok {
		return "", errors.NewMappingError(kind, key, fmt.Errorf("property absent"))
	}
	s, ok := raw.(string)
	if !ok {
		return "", errors.NewMappingError(kind, key, fmt.Errorf("expected string, got %T", raw))
	}
	return s, nil
}

// optionalStringProp tolerates an absent property but not a mistyped one
func optionalStringProp(kind string, props ports.Properties, key string) (string, error) {
	raw, ok := props[key]
	if !ok || raw == nil {
		return "", nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", errors.NewMappingError(kind, key, fmt.Errorf("expected string, got %T", raw))
	}
	return s, nil
}

func intProp(kind string, props ports.Properties, key string) (int64, error) {
	raw, ok := props[key]
	if !ok {
		return 0, errors.NewMappingError(kind, key, fmt.Errorf("property absent"))
	}
	switch v := raw.(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	default:
		return 0, errors.NewMappingError(kind, key, fmt.Errorf("expected integer, got %T", raw))
	}
}

func boolProp(kind string, props ports.Properties, key string) (bool, error) {
	raw, ok := props[key]
	if !ok {
		return false, errors.NewMappingError(kind, key, fmt.Errorf("property absent"))
	}
	b, ok := raw.(bool)
	if !ok {
		return false, errors.NewMappingError(kind, key, fmt.Errorf("expected bool, got %T", raw))
	}
	return b, nil
}
