package export

import "codeberg.org/vasker/fleetsim/internal/errors"

const (
	// Configuration errors
	ErrInvalidConfig = errors.ErrorCode("export_invalid_config")
	ErrInvalidPath   = errors.ErrorCode("export_invalid_path")

	// File sink errors
	ErrFileOpen  = errors.ErrorCode("export_file_open_failed")
	ErrFileWrite = errors.ErrorCode("export_file_write_failed")
	ErrFileClose = errors.ErrorCode("export_file_close_failed")

	// Archive errors
	ErrStorageInit       = errors.ErrorCode("export_storage_init_failed")
	ErrStorageClose      = errors.ErrorCode("export_storage_close_failed")
	ErrSchemaInitFailed  = errors.ErrorCode("export_schema_init_failed")
	ErrTransactionFailed = errors.ErrorCode("export_transaction_failed")
)
