// Package hatchery creates geese: named records with a description, a color
// tag and an image hosted on an external asset host.
//
// The Service interface runs the creation pipeline. A slug is derived from the
// goose name and allocated against the Repository, the image is handed to an
// AssetUploader which materializes it on disk when needed and transmits it
// through a BlobStore, and the goose is inserted once the upload succeeded.
// Repositories (memory, Postgres, Badger) and blob stores (memory, filesystem,
// S3, signed Cloudinary-style upload) are provided under subpackages.
//
// # Slug Uniqueness
//
// Repositories must reject a second goose with an existing slug by returning
// ErrDuplicateSlug from InsertUnique. The service treats that as a collision
// and runs one more allocation round instead of failing the request.
package hatchery
