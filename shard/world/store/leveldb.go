package store

import (
	"encoding/binary"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/df-mc/goleveldb/leveldb"

	"github.com/bramblecraft/shard/world/chunk"
)

// LevelDB is the default Store implementation, keeping one LevelDB
// database per world under {chunk_root}/{world_name}/, grounded on the
// teacher's LevelDB-backed mcdb world provider and playerdb provider.
type LevelDB struct {
	db *leveldb.DB
}

// OpenLevelDB opens (creating if necessary) the LevelDB database for a
// single world at dir.
func OpenLevelDB(dir string) (*LevelDB, error) {
	db, err := leveldb.OpenFile(filepath.Clean(dir), nil)
	if err != nil {
		return nil, fmt.Errorf("open chunk store %q: %w", dir, err)
	}
	return &LevelDB{db: db}, nil
}

func chunkKey(pos chunk.Pos) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint32(key[0:4], uint32(pos[0]))
	binary.BigEndian.PutUint32(key[4:8], uint32(pos[1]))
	return key
}

func (s *LevelDB) Load(pos chunk.Pos) ([]uint32, bool, error) {
	raw, err := s.db.Get(chunkKey(pos), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load chunk %v: %w", pos, err)
	}
	if len(raw)%4 != 0 {
		return nil, false, fmt.Errorf("load chunk %v: corrupt voxel data (%d bytes)", pos, len(raw))
	}
	voxels := make([]uint32, len(raw)/4)
	for i := range voxels {
		voxels[i] = binary.LittleEndian.Uint32(raw[i*4:])
	}
	return voxels, true, nil
}

func (s *LevelDB) Save(pos chunk.Pos, voxels []uint32) error {
	raw := make([]byte, len(voxels)*4)
	for i, v := range voxels {
		binary.LittleEndian.PutUint32(raw[i*4:], v)
	}
	if err := s.db.Put(chunkKey(pos), raw, nil); err != nil {
		return fmt.Errorf("save chunk %v: %w", pos, err)
	}
	return nil
}

func (s *LevelDB) Close() error {
	return s.db.Close()
}
