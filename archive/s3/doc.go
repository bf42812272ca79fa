// Package s3 provides an S3 implementation of the archive.Archive interface.
//
// # Usage
//
//	arc, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("knowledge/"),
//	    s3.WithRegion("us-east-1"),
//	)
//
//	eng, err := symgo.LoadLatest(ctx, arc)
//
// # Features
//
//   - Range reads for efficient partial fetches
//   - Multipart uploads for large snapshots
//   - Automatic pagination for listing
//   - Configurable prefix for multi-tenant isolation
//   - Optional DynamoDB commit log for atomic CURRENT pointer updates
package s3
