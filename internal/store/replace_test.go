package store

import (
	"bytes"
	"context"
	"testing"

	"github.com/SpielerNogard/MAD/internal/apk"
	"github.com/SpielerNogard/MAD/internal/chunk"
)

func TestReplacePackage_FreshSlot(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	payload := bytes.Repeat([]byte{7}, 2100)
	meta := &apk.FileMeta{Filename: "pogo__arm64-v8a__1.0.apk", Size: int64(len(payload)), Mimetype: apk.MimetypeAPK}
	if err := st.ReplacePackage(ctx, apk.APKTypePogo, apk.APKArchArm64V8a, "1.0", meta, payload, 1000); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if meta.ID <= 0 {
		t.Fatalf("expected assigned meta id, got %d", meta.ID)
	}

	record, err := st.LookupPackage(ctx, apk.APKTypePogo, apk.APKArchArm64V8a)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if record == nil || record.Version != "1.0" || record.FilestoreID != meta.ID {
		t.Fatalf("unexpected record %#v", record)
	}

	got, err := st.ReadChunks(ctx, meta.ID)
	if err != nil {
		t.Fatalf("read chunks: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("payload mismatch: got %d bytes", len(got))
	}
}

func TestReplacePackage_ReplacesOldVersionCompletely(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	oldPayload := bytes.Repeat([]byte("old"), 700)
	oldMeta := &apk.FileMeta{Filename: "pogo__arm64-v8a__1.0.apk", Size: int64(len(oldPayload)), Mimetype: apk.MimetypeAPK}
	if err := st.ReplacePackage(ctx, apk.APKTypePogo, apk.APKArchArm64V8a, "1.0", oldMeta, oldPayload, 500); err != nil {
		t.Fatalf("save v1: %v", err)
	}

	newPayload := bytes.Repeat([]byte("new"), 900)
	newMeta := &apk.FileMeta{Filename: "pogo__arm64-v8a__2.0.apk", Size: int64(len(newPayload)), Mimetype: apk.MimetypeAPK}
	if err := st.ReplacePackage(ctx, apk.APKTypePogo, apk.APKArchArm64V8a, "2.0", newMeta, newPayload, 500); err != nil {
		t.Fatalf("save v2: %v", err)
	}

	record, err := st.LookupPackage(ctx, apk.APKTypePogo, apk.APKArchArm64V8a)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if record == nil || record.Version != "2.0" || record.FilestoreID != newMeta.ID {
		t.Fatalf("unexpected record %#v", record)
	}

	got, err := st.ReadChunks(ctx, newMeta.ID)
	if err != nil {
		t.Fatalf("read new chunks: %v", err)
	}
	if !bytes.Equal(got, newPayload) {
		t.Fatalf("new payload mismatch")
	}

	// The old version leaves nothing behind: metadata, chunks, and the slot
	// all point at v2 only.
	oldRow, err := st.GetMeta(ctx, oldMeta.ID)
	if err != nil {
		t.Fatalf("get old meta: %v", err)
	}
	if oldRow != nil {
		t.Fatalf("expected old meta to be deleted, got %#v", oldRow)
	}
	if _, err := st.ReadChunks(ctx, oldMeta.ID); err != ErrNotFound {
		t.Fatalf("expected old chunks gone, got %v", err)
	}

	var metaCount, chunkCount, recordCount int
	if err := st.db.QueryRow("SELECT COUNT(*) FROM filestore_meta").Scan(&metaCount); err != nil {
		t.Fatalf("count meta: %v", err)
	}
	if err := st.db.QueryRow("SELECT COUNT(*) FROM filestore_chunks").Scan(&chunkCount); err != nil {
		t.Fatalf("count chunks: %v", err)
	}
	if err := st.db.QueryRow("SELECT COUNT(*) FROM mad_apks").Scan(&recordCount); err != nil {
		t.Fatalf("count records: %v", err)
	}
	if metaCount != 1 || recordCount != 1 {
		t.Fatalf("orphaned rows: %d meta, %d records", metaCount, recordCount)
	}
	wantChunks := (len(newPayload) + 499) / 500
	if chunkCount != wantChunks {
		t.Fatalf("expected %d chunk rows, got %d", wantChunks, chunkCount)
	}
}

func TestReplacePackage_InvalidChunkSize(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	meta := &apk.FileMeta{Filename: "x.apk", Size: 4, Mimetype: apk.MimetypeAPK}
	err := st.ReplacePackage(ctx, apk.APKTypePogo, apk.APKArchNoarch, "1.0", meta, []byte("data"), 0)
	if err != chunk.ErrInvalidChunkSize {
		t.Fatalf("expected ErrInvalidChunkSize, got %v", err)
	}

	record, lookupErr := st.LookupPackage(ctx, apk.APKTypePogo, apk.APKArchNoarch)
	if lookupErr != nil {
		t.Fatalf("lookup: %v", lookupErr)
	}
	if record != nil {
		t.Fatalf("expected no record after failed save, got %#v", record)
	}
}

func TestReplacePackage_FailureKeepsPreviousVersion(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	payload := []byte("version one payload")
	meta := &apk.FileMeta{Filename: "pogo__arm64-v8a__1.0.apk", Size: int64(len(payload)), Mimetype: apk.MimetypeAPK}
	if err := st.ReplacePackage(ctx, apk.APKTypePogo, apk.APKArchArm64V8a, "1.0", meta, payload, 8); err != nil {
		t.Fatalf("save v1: %v", err)
	}

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	newMeta := &apk.FileMeta{Filename: "pogo__arm64-v8a__2.0.apk", Size: 4, Mimetype: apk.MimetypeAPK}
	if err := st.ReplacePackage(canceled, apk.APKTypePogo, apk.APKArchArm64V8a, "2.0", newMeta, []byte("newp"), 8); err == nil {
		t.Fatal("expected failure with canceled context")
	}

	// The rollback restores the previous version in full.
	record, err := st.LookupPackage(ctx, apk.APKTypePogo, apk.APKArchArm64V8a)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if record == nil || record.Version != "1.0" {
		t.Fatalf("expected v1 to survive failed save, got %#v", record)
	}
	got, err := st.ReadChunks(ctx, record.FilestoreID)
	if err != nil {
		t.Fatalf("read chunks: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("v1 payload damaged by failed save")
	}
}

func TestDeletePackageData(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	payload := []byte("some payload")
	meta := &apk.FileMeta{Filename: "rgc__noarch__1.0.apk", Size: int64(len(payload)), Mimetype: apk.MimetypeAPK}
	if err := st.ReplacePackage(ctx, apk.APKTypeRGC, apk.APKArchNoarch, "1.0", meta, payload, 4); err != nil {
		t.Fatalf("save: %v", err)
	}

	found, err := st.DeletePackageData(ctx, apk.APKTypeRGC, apk.APKArchNoarch)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !found {
		t.Fatal("expected package to be found")
	}

	var metaCount, chunkCount, recordCount int
	if err := st.db.QueryRow("SELECT COUNT(*) FROM filestore_meta").Scan(&metaCount); err != nil {
		t.Fatalf("count meta: %v", err)
	}
	if err := st.db.QueryRow("SELECT COUNT(*) FROM filestore_chunks").Scan(&chunkCount); err != nil {
		t.Fatalf("count chunks: %v", err)
	}
	if err := st.db.QueryRow("SELECT COUNT(*) FROM mad_apks").Scan(&recordCount); err != nil {
		t.Fatalf("count records: %v", err)
	}
	if metaCount != 0 || chunkCount != 0 || recordCount != 0 {
		t.Fatalf("residual rows after delete: %d meta, %d chunks, %d records", metaCount, chunkCount, recordCount)
	}

	// Deleting an empty slot reports not found without error.
	found, err = st.DeletePackageData(ctx, apk.APKTypeRGC, apk.APKArchNoarch)
	if err != nil {
		t.Fatalf("re-delete: %v", err)
	}
	if found {
		t.Fatal("expected not found on empty slot")
	}
}
