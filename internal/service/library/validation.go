package library

import (
	"context"
	"fmt"
	"slices"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"scriptdesk/internal/config"
	"scriptdesk/internal/domain"
	models "scriptdesk/internal/domain/models/library"
	libraryRepo "scriptdesk/internal/domain/repositories/library"
	librarySvc "scriptdesk/internal/domain/services/library"
)

// ownedProject loads a project and hides projects of other users behind a NotFoundError
func ownedProject(ctx context.Context, repo libraryRepo.ProjectRepository, id, userID string) (*models.Project, error) {
	project, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if project.UserID != userID {
		return nil, domain.NewNotFoundError("project", id)
	}
	return project, nil
}

// ownedScript loads a script and hides scripts of other users behind a NotFoundError
func ownedScript(ctx context.Context, repo libraryRepo.ScriptRepository, id, userID string) (*models.Script, error) {
	script, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if script.UserID != userID {
		return nil, domain.NewNotFoundError("script", id)
	}
	return script, nil
}

// validationFailed wraps an ozzo error so errors.Is(err, domain.ErrValidation) holds
func validationFailed(err error) error {
	return fmt.Errorf("%w: %v", domain.ErrValidation, err)
}

// notBlank rejects strings that are empty after trimming
func notBlank(value interface{}) error {
	var s string
	switch v := value.(type) {
	case string:
		s = v
	case *string:
		if v == nil {
			return nil
		}
		s = *v
	default:
		return fmt.Errorf("must be a string")
	}
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("cannot be blank")
	}
	return nil
}

// validSettings checks both enum fields of a settings value
func validSettings(value interface{}) error {
	settings, ok := value.(*models.ProjectSettings)
	if !ok || settings == nil {
		return nil
	}
	if !settings.DefaultContentType.Valid() {
		return fmt.Errorf("unknown content type %q", settings.DefaultContentType)
	}
	if !settings.DefaultStatus.Valid() {
		return fmt.Errorf("unknown status %q", settings.DefaultStatus)
	}
	return nil
}

// validateMetadataInput checks the raw metadata fields of a create or update
func validateMetadataInput(in *librarySvc.MetadataInput) error {
	if in == nil {
		return nil
	}
	return validation.ValidateStruct(in,
		validation.Field(&in.ContentType, validation.By(func(value interface{}) error {
			if in.ContentType == nil {
				return nil
			}
			_, err := models.ParseContentType(*in.ContentType)
			return err
		})),
		validation.Field(&in.Status, validation.By(func(value interface{}) error {
			if in.Status == nil {
				return nil
			}
			_, err := models.ParseScriptStatus(*in.Status)
			return err
		})),
		validation.Field(&in.Tags, validation.By(func(value interface{}) error {
			if in.Tags == nil {
				return nil
			}
			return validateTags(*in.Tags)
		})),
		validation.Field(&in.Duration, validation.By(func(value interface{}) error {
			if in.Duration == nil {
				return nil
			}
			if *in.Duration < 1 || *in.Duration > config.MaxScriptDuration {
				return fmt.Errorf("must be between 1 and %d minutes", config.MaxScriptDuration)
			}
			return nil
		})),
	)
}

func validateTags(tags []string) error {
	if len(tags) > config.MaxTagCount {
		return fmt.Errorf("at most %d tags are allowed", config.MaxTagCount)
	}
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			return fmt.Errorf("tags cannot be blank")
		}
		if len(tag) > config.MaxTagLength {
			return fmt.Errorf("tag %q exceeds %d characters", tag, config.MaxTagLength)
		}
	}
	return nil
}

// normalizeTags trims, lowercases and de-duplicates tags, keeping first occurrence order
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if !slices.Contains(out, tag) {
			out = append(out, tag)
		}
	}
	return out
}

// mergeMetadata applies a validated input over base. Absent fields keep base values.
func mergeMetadata(base models.ScriptMetadata, in *librarySvc.MetadataInput) models.ScriptMetadata {
	out := base
	out.Tags = slices.Clone(base.Tags)
	if out.Tags == nil {
		out.Tags = []string{}
	}
	if in == nil {
		return out
	}

	if in.ContentType != nil {
		out.ContentType = models.ContentType(*in.ContentType)
	}
	if in.Status != nil {
		out.Status = models.ScriptStatus(*in.Status)
	}
	if in.Tags != nil {
		out.Tags = normalizeTags(*in.Tags)
	}
	if in.Duration != nil {
		d := *in.Duration
		out.Duration = &d
	}
	return out
}

// defaultMetadata is the starting metadata of a script created in project
func defaultMetadata(settings models.ProjectSettings) models.ScriptMetadata {
	return models.ScriptMetadata{
		ContentType: settings.DefaultContentType,
		Status:      settings.DefaultStatus,
		Tags:        []string{},
	}
}
