// Package objectstore persists collection documents in an S3-compatible
// bucket using aws-sdk-go-v2.
//
// Select it with storage.backend: s3. MinIO and other S3-compatible
// servers work with storage.s3.endpoint and storage.s3.path_style.
package objectstore
