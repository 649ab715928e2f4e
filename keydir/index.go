package keydir

import (
	"slices"
	"strings"

	"github.com/cqkv/recstore/model"
	"github.com/google/btree"
)

// Normalize return the index key of a field value
func Normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

// Index maps a normalized field value to the ordered handles of records holding it.
type Index[H comparable] struct {
	tree *btree.BTreeG[*bucket[H]]
}

type bucket[H comparable] struct {
	key     string
	handles []H
}

func lessBucket[H comparable](a, b *bucket[H]) bool {
	return a.key < b.key
}

func NewIndex[H comparable](degree int) *Index[H] {
	if degree <= 0 {
		degree = defaultDegree
	}
	return &Index[H]{
		tree: btree.NewG[*bucket[H]](degree, lessBucket[H]),
	}
}

// Add appends handle under key, an existing pair is kept once
func (idx *Index[H]) Add(key string, handle H) {
	key = Normalize(key)
	b, ok := idx.tree.Get(&bucket[H]{key: key})
	if !ok {
		idx.tree.ReplaceOrInsert(&bucket[H]{key: key, handles: []H{handle}})
		return
	}
	if slices.Contains(b.handles, handle) {
		return
	}
	b.handles = append(b.handles, handle)
}

// Remove drops handle from key, empty keys are deleted
func (idx *Index[H]) Remove(key string, handle H) bool {
	key = Normalize(key)
	b, ok := idx.tree.Get(&bucket[H]{key: key})
	if !ok {
		return false
	}
	i := slices.Index(b.handles, handle)
	if i < 0 {
		return false
	}
	b.handles = slices.Delete(b.handles, i, i+1)
	if len(b.handles) == 0 {
		idx.tree.Delete(b)
	}
	return true
}

// Get return a copy of the handles under key
func (idx *Index[H]) Get(key string) []H {
	b, ok := idx.tree.Get(&bucket[H]{key: Normalize(key)})
	if !ok {
		return nil
	}
	return slices.Clone(b.handles)
}

// Keys return the number of distinct keys
func (idx *Index[H]) Keys() int {
	return idx.tree.Len()
}

func (idx *Index[H]) Clear() {
	idx.tree.Clear(false)
}

// IndexSet holds the first name, last name and date of birth indices.
type IndexSet[H comparable] struct {
	FirstName   *Index[H]
	LastName    *Index[H]
	DateOfBirth *Index[H]
}

func NewIndexSet[H comparable](degree int) *IndexSet[H] {
	return &IndexSet[H]{
		FirstName:   NewIndex[H](degree),
		LastName:    NewIndex[H](degree),
		DateOfBirth: NewIndex[H](degree),
	}
}

// Add indexes every indexed field of record under handle
func (is *IndexSet[H]) Add(record *model.Fields, handle H) {
	is.FirstName.Add(record.FirstName, handle)
	is.LastName.Add(record.LastName, handle)
	is.DateOfBirth.Add(record.DateOfBirth.Format(model.DateLayout), handle)
}

// Remove drops the entries of record under handle, it must be called with the indexed values
func (is *IndexSet[H]) Remove(record *model.Fields, handle H) {
	is.FirstName.Remove(record.FirstName, handle)
	is.LastName.Remove(record.LastName, handle)
	is.DateOfBirth.Remove(record.DateOfBirth.Format(model.DateLayout), handle)
}

// Lookup return the handles for an indexed field, ok is false for fields without index
func (is *IndexSet[H]) Lookup(field, value string) (handles []H, ok bool) {
	switch model.NormalizeField(field) {
	case model.FieldFirstName:
		return is.FirstName.Get(value), true
	case model.FieldLastName:
		return is.LastName.Get(value), true
	case model.FieldDateOfBirth:
		dob, err := model.ParseDate(value)
		if err != nil {
			return nil, true
		}
		return is.DateOfBirth.Get(dob.Format(model.DateLayout)), true
	}
	return nil, false
}

func (is *IndexSet[H]) Clear() {
	is.FirstName.Clear()
	is.LastName.Clear()
	is.DateOfBirth.Clear()
}
