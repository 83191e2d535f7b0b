package repositories

// SnapshotStore persists the whole record set as one unit.
// Load is called once at startup; Save replaces the stored snapshot with ix.
type SnapshotStore interface {
	Load() (*UserIndex, error)
	Save(ix *UserIndex) error
}
