package columnio

// BinaryDictionary is an insertion ordered Dictionary of distinct values.
type BinaryDictionary struct {
	values [][]byte
	ids    map[string]int
}

// NewBinaryDictionary returns an empty dictionary.
func NewBinaryDictionary() *BinaryDictionary {
	return &BinaryDictionary{ids: make(map[string]int)}
}

// Add returns the id of v, adding it if it is not present yet.
func (d *BinaryDictionary) Add(v []byte) int {
	if id, ok := d.ids[string(v)]; ok {
		return id
	}
	id := len(d.values)
	d.values = append(d.values, append([]byte(nil), v...))
	d.ids[string(v)] = id
	return id
}

// ID returns the id of v.
func (d *BinaryDictionary) ID(v []byte) (int, bool) {
	id, ok := d.ids[string(v)]
	return id, ok
}

func (d *BinaryDictionary) Len() int             { return len(d.values) }
func (d *BinaryDictionary) Binary(id int) []byte { return d.values[id] }
