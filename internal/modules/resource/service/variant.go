package service

import (
	"strings"

	"anoa.com/studyhub/internal/entity"
	"anoa.com/studyhub/pkg/apperror"
)

func blank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}

// validateVariant enforces which optional fields each resource type may carry.
func validateVariant(r *entity.InterviewResource) error {
	hasFile := !blank(r.FileURL) || !blank(r.FileName) || r.FileSize != nil

	switch r.Type {
	case entity.ResourceTypeLink:
		if blank(r.URL) {
			return apperror.Validation("a link resource requires url")
		}
		if hasFile {
			return apperror.Validation("a link resource cannot carry file fields")
		}
		return nil
	case entity.ResourceTypeCodingQuestion, entity.ResourceTypeStudyGuide:
		if strings.TrimSpace(r.Content) == "" {
			return apperror.Validation("a " + r.Type + " resource requires content")
		}
	case entity.ResourceTypeDocument, entity.ResourceTypeVideo, entity.ResourceTypeExcel, entity.ResourceTypeImage:
	default:
		return apperror.Validation("unknown resource type " + r.Type)
	}

	if blank(r.FileURL) && (!blank(r.FileName) || r.FileSize != nil) {
		return apperror.Validation("fileName and fileSize require fileUrl")
	}
	if r.FileSize != nil && *r.FileSize < 0 {
		return apperror.Validation("fileSize cannot be negative")
	}
	return nil
}
