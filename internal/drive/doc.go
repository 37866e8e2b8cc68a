// Package drive provides read-only access to Google Drive files.
//
// The campaign tooling uses Drive for exactly one thing: fetching a resume
// PDF by file ID when the user keeps it in Drive instead of on the local
// filesystem. The OAuth scope is drive.readonly; no write operations are
// exposed.
//
// Example usage:
//
//	ctx := context.Background()
//	client, err := drive.NewClient(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	file, err := client.Download(ctx, fileID)
//	if err != nil {
//	    log.Fatal(err)
//	}
package drive
