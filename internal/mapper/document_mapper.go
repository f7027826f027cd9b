package mapper

import (
	"ai-writepad-be/internal/entity"
	"ai-writepad-be/internal/model"
)

type DocumentMapper struct{}

func NewDocumentMapper() *DocumentMapper {
	return &DocumentMapper{}
}

func (m *DocumentMapper) ToEntity(d *model.Document) *entity.Document {
	if d == nil {
		return nil
	}
	return &entity.Document{
		Id:        d.Id,
		Name:      d.Name,
		Content:   d.Content,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func (m *DocumentMapper) ToModel(d *entity.Document) *model.Document {
	if d == nil {
		return nil
	}
	return &model.Document{
		Id:        d.Id,
		Name:      d.Name,
		Content:   d.Content,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func (m *DocumentMapper) ToEntities(docs []*model.Document) []*entity.Document {
	entities := make([]*entity.Document, len(docs))
	for i, d := range docs {
		entities[i] = m.ToEntity(d)
	}
	return entities
}

func (m *DocumentMapper) VersionToEntity(v *model.DocumentVersion) *entity.DocumentVersion {
	if v == nil {
		return nil
	}
	return &entity.DocumentVersion{
		Id:         v.Id,
		DocumentId: v.DocumentId,
		Content:    v.Content,
		CreatedAt:  v.CreatedAt,
	}
}

func (m *DocumentMapper) VersionToModel(v *entity.DocumentVersion) *model.DocumentVersion {
	if v == nil {
		return nil
	}
	return &model.DocumentVersion{
		Id:         v.Id,
		DocumentId: v.DocumentId,
		Content:    v.Content,
		CreatedAt:  v.CreatedAt,
	}
}

func (m *DocumentMapper) VersionsToEntities(versions []*model.DocumentVersion) []*entity.DocumentVersion {
	entities := make([]*entity.DocumentVersion, len(versions))
	for i, v := range versions {
		entities[i] = m.VersionToEntity(v)
	}
	return entities
}
