package models

import (
	"github.com/gjc-app/board-sync/repos/docstore"
)

// Item is a board model whose id lives in the document key.
type Item[T any] interface {
	*T
	SetID(id string)
}

func (r *RecruitmentPost) SetID(id string) { r.ID = id }
func (s *ScrimPost) SetID(id string)       { s.ID = id }
func (e *Event) SetID(id string)           { e.ID = id }
func (l *Loadout) SetID(id string)         { l.ID = id }

// Decode converts one stored document into a board model.
func Decode[T any, PT Item[T]](doc docstore.Document) (T, error) {
	var item T
	if err := doc.DataTo(PT(&item)); err != nil {
		return item, err
	}
	PT(&item).SetID(doc.ID)
	return item, nil
}

// DecodeAll converts a snapshot keeping its order.
func DecodeAll[T any, PT Item[T]](snap docstore.Snapshot) ([]T, error) {
	result := make([]T, len(snap))
	for i, doc := range snap {
		item, err := Decode[T, PT](doc)
		if err != nil {
			return nil, err
		}
		result[i] = item
	}
	return result, nil
}

// DecodeProfile converts a users document. The id is the key, not a field.
func DecodeProfile(doc docstore.Document) (UserProfile, error) {
	var p UserProfile
	if err := doc.DataTo(&p); err != nil {
		return p, err
	}
	p.ID = ""
	return p, nil
}
