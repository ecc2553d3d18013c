package providers

import (
	"github.com/samber/do/v2"

	"github.com/Iceblockp/mobile-pos-sub001/internal/config"
	"github.com/Iceblockp/mobile-pos-sub001/internal/logger"
	"github.com/Iceblockp/mobile-pos-sub001/internal/recovery"
	"github.com/Iceblockp/mobile-pos-sub001/internal/snapshot"
	"github.com/Iceblockp/mobile-pos-sub001/internal/snapshot/export"
	snapimport "github.com/Iceblockp/mobile-pos-sub001/internal/snapshot/import"
	"github.com/Iceblockp/mobile-pos-sub001/internal/validation"
)

// ProvideSnapshotService provides the snapshot directory service.
func ProvideSnapshotService(i do.Injector) (*snapshot.Service, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	return snapshot.NewService(cfg.Snapshot.Dir, log), nil
}

// ProvideValidator provides the struct validator.
func ProvideValidator(i do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}

// ProvideCheckpoints provides the recovery checkpoint registry.
func ProvideCheckpoints(i do.Injector) (*recovery.Checkpoints, error) {
	log := do.MustInvoke[*logger.Logger](i)
	return recovery.NewCheckpoints(log), nil
}

// ProvideExporter provides the snapshot exporter.
func ProvideExporter(i do.Injector) (*export.Exporter, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	snapshots := do.MustInvoke[*snapshot.Service](i)
	log := do.MustInvoke[*logger.Logger](i)

	return export.New(storeHandle.Store, snapshots, log), nil
}

// ProvideImporter provides the snapshot importer.
func ProvideImporter(i do.Injector) (*snapimport.Importer, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	validator := do.MustInvoke[*validation.Validator](i)
	checkpoints := do.MustInvoke[*recovery.Checkpoints](i)
	log := do.MustInvoke[*logger.Logger](i)

	return snapimport.New(storeHandle.Store, validator, checkpoints, cfg.Snapshot.DefaultBatchSize, log), nil
}
