package vectorindex

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/craftlink/go-backend/internal/domain"
	"github.com/craftlink/go-backend/pkg/e"
	"github.com/jimlawless/whereami"
)

// Формат бинарного артефакта векторов:
// magic (8 байт), длина build_id (uint32) + build_id, created_at (int64, unix),
// dim (uint32), count (uint32), затем count*dim float32 little-endian.
const vectorsMagic = "CLVEC001"

// identityArtifact — JSON-артефакт соответствия строки индекса идентификатору товара.
// BuildID обязан совпадать с build_id бинарного артефакта: пара из разных прогонов
// индексатора не загружается.
type identityArtifact struct {
	BuildID    string    `json:"build_id"`
	CreatedAt  time.Time `json:"created_at"`
	ProductIDs []string  `json:"product_ids"`
}

// SnapshotStore — дисковое хранилище снапшотов для индексатора.
type SnapshotStore struct{}

func (SnapshotStore) WriteSnapshot(snap *domain.IndexSnapshot, vectorsPath, identityPath string) error {
	return WriteSnapshot(snap, vectorsPath, identityPath)
}

// WriteSnapshot записывает оба артефакта снапшота как одну логическую единицу:
// сначала во временные файлы рядом с целевыми, затем атомарный rename обоих.
// Читатель никогда не увидит один артефакт без парного ему.
func WriteSnapshot(snap *domain.IndexSnapshot, vectorsPath, identityPath string) error {
	if len(snap.Vectors) != len(snap.ProductIDs) {
		return e.Wrap(whereami.WhereAmI(),
			fmt.Errorf("vectors/identity length mismatch: %d != %d", len(snap.Vectors), len(snap.ProductIDs)))
	}

	for _, dir := range []string{filepath.Dir(vectorsPath), filepath.Dir(identityPath)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return e.Wrap(whereami.WhereAmI(), err)
		}
	}

	tmpVectors := vectorsPath + ".tmp"
	tmpIdentity := identityPath + ".tmp"

	if err := writeVectorsArtifact(tmpVectors, snap); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	if err := writeIdentityArtifact(tmpIdentity, snap); err != nil {
		os.Remove(tmpVectors)
		return e.Wrap(whereami.WhereAmI(), err)
	}

	if err := os.Rename(tmpVectors, vectorsPath); err != nil {
		os.Remove(tmpVectors)
		os.Remove(tmpIdentity)
		return e.Wrap(whereami.WhereAmI(), err)
	}

	if err := os.Rename(tmpIdentity, identityPath); err != nil {
		os.Remove(tmpIdentity)
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

// ReadSnapshot загружает и валидирует пару артефактов.
// Любое структурное нарушение, расхождение пары или пустой индекс
// возвращаются как ошибка, оборачивающая e.ErrIndexLoad.
func ReadSnapshot(vectorsPath, identityPath string) (*domain.IndexSnapshot, error) {
	buildID, createdAt, dim, vectors, err := readVectorsArtifact(vectorsPath)
	if err != nil {
		return nil, loadErr("vectors artifact %s: %v", vectorsPath, err)
	}

	identity, err := readIdentityArtifact(identityPath)
	if err != nil {
		return nil, loadErr("identity artifact %s: %v", identityPath, err)
	}

	if identity.BuildID != buildID {
		return nil, loadErr("artifact pair mismatch: vectors build %q, identity build %q", buildID, identity.BuildID)
	}

	if len(vectors) != len(identity.ProductIDs) {
		return nil, loadErr("artifact pair mismatch: %d vectors, %d identities", len(vectors), len(identity.ProductIDs))
	}

	if len(vectors) == 0 {
		return nil, loadErr("snapshot is empty, re-run the indexer")
	}

	return domain.NewIndexSnapshot(buildID, createdAt, dim, vectors, identity.ProductIDs), nil
}

func writeVectorsArtifact(path string, snap *domain.IndexSnapshot) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.Write([]byte(vectorsMagic)); err != nil {
		return err
	}

	buildID := []byte(snap.BuildID)
	if err := binary.Write(f, binary.LittleEndian, uint32(len(buildID))); err != nil {
		return err
	}
	if _, err := f.Write(buildID); err != nil {
		return err
	}

	if err := binary.Write(f, binary.LittleEndian, snap.CreatedAt.Unix()); err != nil {
		return err
	}
	if err := binary.Write(f, binary.LittleEndian, uint32(snap.Dim)); err != nil {
		return err
	}
	if err := binary.Write(f, binary.LittleEndian, uint32(len(snap.Vectors))); err != nil {
		return err
	}

	for i, vec := range snap.Vectors {
		if len(vec) != snap.Dim {
			return fmt.Errorf("vector %d has dim %d, snapshot dim %d", i, len(vec), snap.Dim)
		}
		if err := binary.Write(f, binary.LittleEndian, vec); err != nil {
			return err
		}
	}

	return f.Sync()
}

func readVectorsArtifact(path string) (string, time.Time, int, [][]float32, error) {
	var zero time.Time

	f, err := os.Open(path)
	if err != nil {
		return "", zero, 0, nil, err
	}
	defer f.Close()

	magic := make([]byte, len(vectorsMagic))
	if _, err := io.ReadFull(f, magic); err != nil {
		return "", zero, 0, nil, fmt.Errorf("read magic: %w", err)
	}
	if string(magic) != vectorsMagic {
		return "", zero, 0, nil, fmt.Errorf("bad magic %q", magic)
	}

	var buildIDLen uint32
	if err := binary.Read(f, binary.LittleEndian, &buildIDLen); err != nil {
		return "", zero, 0, nil, fmt.Errorf("read build id len: %w", err)
	}
	if buildIDLen > 256 {
		return "", zero, 0, nil, fmt.Errorf("implausible build id length %d", buildIDLen)
	}

	buildID := make([]byte, buildIDLen)
	if _, err := io.ReadFull(f, buildID); err != nil {
		return "", zero, 0, nil, fmt.Errorf("read build id: %w", err)
	}

	var createdAtUnix int64
	if err := binary.Read(f, binary.LittleEndian, &createdAtUnix); err != nil {
		return "", zero, 0, nil, fmt.Errorf("read created_at: %w", err)
	}

	var dim, count uint32
	if err := binary.Read(f, binary.LittleEndian, &dim); err != nil {
		return "", zero, 0, nil, fmt.Errorf("read dim: %w", err)
	}
	if err := binary.Read(f, binary.LittleEndian, &count); err != nil {
		return "", zero, 0, nil, fmt.Errorf("read count: %w", err)
	}
	if dim == 0 && count > 0 {
		return "", zero, 0, nil, fmt.Errorf("zero dimension with %d vectors", count)
	}

	vectors := make([][]float32, 0, count)
	for i := uint32(0); i < count; i++ {
		vec := make([]float32, dim)
		if err := binary.Read(f, binary.LittleEndian, vec); err != nil {
			return "", zero, 0, nil, fmt.Errorf("read vector %d: %w", i, err)
		}
		vectors = append(vectors, vec)
	}

	return string(buildID), time.Unix(createdAtUnix, 0).UTC(), int(dim), vectors, nil
}

func writeIdentityArtifact(path string, snap *domain.IndexSnapshot) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	artifact := identityArtifact{
		BuildID:    snap.BuildID,
		CreatedAt:  snap.CreatedAt,
		ProductIDs: snap.ProductIDs,
	}

	if err := json.NewEncoder(f).Encode(&artifact); err != nil {
		return err
	}

	return f.Sync()
}

func readIdentityArtifact(path string) (*identityArtifact, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var artifact identityArtifact
	if err := json.NewDecoder(f).Decode(&artifact); err != nil {
		return nil, fmt.Errorf("decode identity json: %w", err)
	}

	return &artifact, nil
}

func loadErr(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), e.ErrIndexLoad)
}
