package board

import "github.com/google/uuid"

// Keys returns the color key items in legend order.
func (b *Board) Keys() []ColorKey {
	return b.keys
}

// Key returns the color key item with the given id.
func (b *Board) Key(id string) (ColorKey, bool) {
	for _, k := range b.keys {
		if k.ID == id {
			return k, true
		}
	}
	return ColorKey{}, false
}

// AddColorKey appends a new legend entry.
func (b *Board) AddColorKey(name, color string) ColorKey {
	k := ColorKey{ID: uuid.New().String(), Name: name, Color: color}
	b.keys = append(b.keys, k)
	return k
}

// RemoveColorKey deletes a legend entry. The last remaining entry cannot be
// removed; every rope and the active color that referenced the removed entry
// are reassigned to the first remaining one.
func (b *Board) RemoveColorKey(id string) error {
	if len(b.keys) <= 1 {
		return ErrLastColorKey
	}

	idx := -1
	for i, k := range b.keys {
		if k.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrNotFound
	}

	b.keys = append(b.keys[:idx], b.keys[idx+1:]...)
	fallback := b.keys[0].ID

	if b.ActiveColorID == id {
		b.ActiveColorID = fallback
	}
	for _, r := range b.ropes {
		if r.ColorID == id {
			r.ColorID = fallback
		}
	}
	return nil
}

// RenameColorKey updates a legend entry's display name.
func (b *Board) RenameColorKey(id, name string) error {
	for i := range b.keys {
		if b.keys[i].ID == id {
			b.keys[i].Name = name
			return nil
		}
	}
	return ErrNotFound
}

// SetColorKeyColor updates a legend entry's color value.
func (b *Board) SetColorKeyColor(id, color string) error {
	for i := range b.keys {
		if b.keys[i].ID == id {
			b.keys[i].Color = color
			return nil
		}
	}
	return ErrNotFound
}

// SetActiveColor selects the color used for new ropes. Unknown ids are
// ignored so a stale reference cannot leave the board without a valid
// active color.
func (b *Board) SetActiveColor(id string) {
	if _, ok := b.Key(id); ok {
		b.ActiveColorID = id
	}
}
