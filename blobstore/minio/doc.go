// Package minio stores snapshots in MinIO or any S3-compatible server
// through the MinIO client, without the AWS SDK.
//
//	client, err := minio.New("localhost:9000", &minio.Options{
//	    Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
//	    Secure: false,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	store := minioblob.NewStore(client, "recommenders", "cf4j/")
//
// Connect builds the client from an endpoint and static credentials.
package minio
