package minio

import (
	"context"
	"fmt"

	"github.com/craftlink/go-backend/internal/cfg"
	"github.com/craftlink/go-backend/pkg/e"
	"github.com/jimlawless/whereami"
	"github.com/minio/minio-go/v7"
)

// Фиксированные имена объектов: сервис при старте всегда забирает последнюю пару.
const (
	vectorsObjectKey  = "latest/index.vec"
	identityObjectKey = "latest/index.ids.json"
)

// ArtifactRepo хранит пару артефактов снапшота индекса в MinIO.
// Пара публикуется целиком: сначала версионные копии, затем латест-ключи.
type ArtifactRepo struct {
	mc  *minio.Client
	cfg *cfg.MinIOCfg
}

func NewArtifactRepo(mc *minio.Client, cfg *cfg.MinIOCfg) *ArtifactRepo {
	return &ArtifactRepo{
		mc:  mc,
		cfg: cfg,
	}
}

// UploadPair публикует оба артефакта снапшота.
func (a *ArtifactRepo) UploadPair(ctx context.Context, buildID, vectorsPath, identityPath string) error {
	objects := []struct {
		versioned string
		latest    string
		path      string
	}{
		{fmt.Sprintf("builds/%s/index.vec", buildID), vectorsObjectKey, vectorsPath},
		{fmt.Sprintf("builds/%s/index.ids.json", buildID), identityObjectKey, identityPath},
	}

	for _, obj := range objects {
		if _, err := a.mc.FPutObject(ctx, a.cfg.ArtifactBucket, obj.versioned, obj.path, minio.PutObjectOptions{}); err != nil {
			return e.Wrap(whereami.WhereAmI(), err)
		}
	}

	for _, obj := range objects {
		if _, err := a.mc.FPutObject(ctx, a.cfg.ArtifactBucket, obj.latest, obj.path, minio.PutObjectOptions{}); err != nil {
			return e.Wrap(whereami.WhereAmI(), err)
		}
	}

	return nil
}

// DownloadPair забирает последнюю пару артефактов в указанные локальные файлы.
func (a *ArtifactRepo) DownloadPair(ctx context.Context, vectorsPath, identityPath string) error {
	if err := a.mc.FGetObject(ctx, a.cfg.ArtifactBucket, vectorsObjectKey, vectorsPath, minio.GetObjectOptions{}); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	if err := a.mc.FGetObject(ctx, a.cfg.ArtifactBucket, identityObjectKey, identityPath, minio.GetObjectOptions{}); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}
