package main

import (
	"fmt"
	"os"

	config "github.com/craftlink/go-backend/internal/cfg"
	"github.com/craftlink/go-backend/internal/infrastructure/genai"
	s3Repo "github.com/craftlink/go-backend/internal/repository/minio"
	"github.com/craftlink/go-backend/internal/repository/pgdb"
	pgdbConv "github.com/craftlink/go-backend/internal/repository/pgdb/converter"
	"github.com/craftlink/go-backend/internal/repository/vectorindex"
	"github.com/craftlink/go-backend/internal/usecase"
	"github.com/craftlink/go-backend/pkg/clients"
	"github.com/craftlink/go-backend/pkg/logger"
	"github.com/craftlink/go-backend/pkg/postgres"
	"github.com/spf13/cobra"
)

var (
	force  bool
	upload bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "indexer",
		Short: "Offline builder of the product similarity index",
	}

	buildCmd := &cobra.Command{
		Use:   "build",
		Short: "Rebuild the vector index snapshot from the product catalog",
		RunE:  runBuild,
	}
	buildCmd.Flags().BoolVar(&force, "force", false, "recompute all embeddings, ignoring stored ones")
	buildCmd.Flags().BoolVar(&upload, "upload", false, "publish the snapshot pair to the object store")

	rootCmd.AddCommand(buildCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runBuild(cmd *cobra.Command, args []string) error {
	log := logger.NewSlogLogger()

	cfg, err := config.Load(log)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := postgres.Connect(cfg.Db)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	productRepo := pgdb.NewProductRepo(db.Pool, pgdbConv.ProductConverter{})
	embeddings := genai.NewEmbeddingsClient(cfg.GenAI, log)

	var artifactRepo usecase.ArtifactRepository
	if upload {
		minioClient, err := clients.NewMinIOClient(cfg)
		if err != nil {
			return fmt.Errorf("connect to object store: %w", err)
		}
		artifactRepo = s3Repo.NewArtifactRepo(minioClient, cfg.Minio)
	}

	indexerUC := usecase.NewIndexerUC(
		productRepo,
		embeddings,
		vectorindex.SnapshotStore{},
		artifactRepo,
		db.Pool,
		*cfg.Index,
		*cfg.GenAI,
		log,
	)

	res, err := indexerUC.BuildIndex(cmd.Context(), &usecase.BuildIndexReq{Force: force})
	if err != nil {
		return err
	}

	fmt.Printf(
		"build %s: %d products, %d embedded, %d reused, %d skipped, %d vectors\n",
		res.BuildID, res.Total, res.Embedded, res.Reused, res.Skipped, res.VectorCount,
	)

	return nil
}
