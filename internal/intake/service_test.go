package intake

import (
	"bytes"
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/availproject/turbo-gateway/internal/ledgerstore"
	pb "github.com/availproject/turbo-gateway/pkg/proto/submission/v1"
)

func TestSubmitData_RejectsMissingAppAccountID(t *testing.T) {
	svc := &Service{}
	_, err := svc.SubmitData(context.Background(), &pb.SubmitDataRequest{Data: []byte("x")})
	requireStatusCode(t, err, codes.InvalidArgument)
}

func TestSubmitData_RejectsEmptyPayload(t *testing.T) {
	svc := &Service{}
	_, err := svc.SubmitData(context.Background(), &pb.SubmitDataRequest{AppAccountId: "acc_1"})
	requireStatusCode(t, err, codes.InvalidArgument)
}

func TestSubmitData_RejectsOversizedPayload(t *testing.T) {
	svc := &Service{}
	oversized := bytes.Repeat([]byte{0x01}, maxPayloadBytes+1)
	_, err := svc.SubmitData(context.Background(), &pb.SubmitDataRequest{AppAccountId: "acc_1", Data: oversized})
	requireStatusCode(t, err, codes.InvalidArgument)
}

func TestSubmitData_RejectsMissingAuthenticatedUser(t *testing.T) {
	svc := &Service{}
	_, err := svc.SubmitData(context.Background(), &pb.SubmitDataRequest{AppAccountId: "acc_1", Data: []byte("x")})
	requireStatusCode(t, err, codes.Unauthenticated)
}

func TestSubmitRawData_RejectsInvalidBase64(t *testing.T) {
	svc := &Service{}
	_, err := svc.SubmitRawData(context.Background(), &pb.SubmitRawDataRequest{AppAccountId: "acc_1", DataBase64: "not-valid-base64!!"})
	requireStatusCode(t, err, codes.InvalidArgument)
}

func TestSubmitRawData_RejectsEmptyDecodedPayload(t *testing.T) {
	svc := &Service{}
	_, err := svc.SubmitRawData(context.Background(), &pb.SubmitRawDataRequest{AppAccountId: "acc_1", DataBase64: ""})
	requireStatusCode(t, err, codes.InvalidArgument)
}

func TestGetSubmissionInfo_RejectsMissingID(t *testing.T) {
	svc := &Service{}
	_, err := svc.GetSubmissionInfo(context.Background(), &pb.GetSubmissionInfoRequest{})
	requireStatusCode(t, err, codes.InvalidArgument)
}

func TestToSubmissionData_MapsStateAndNullableFields(t *testing.T) {
	sub := &ledgerstore.Submission{
		SubmissionID: "sub_1",
		RetryCount:   2,
		BlockHash:    sql.NullString{String: "0xabc", Valid: true},
		BlockNumber:  sql.NullInt64{Int64: 42, Valid: true},
	}

	data := toSubmissionData(sub)
	assert.Equal(t, pb.State_FINALIZED, data.State)
	assert.Equal(t, "0xabc", data.BlockHash)
	assert.Equal(t, int64(42), data.BlockNumber)
	assert.Equal(t, int32(2), data.RetryCount)
}

func TestToSubmissionData_PendingHasNoChainFields(t *testing.T) {
	sub := &ledgerstore.Submission{SubmissionID: "sub_2"}
	data := toSubmissionData(sub)
	assert.Equal(t, pb.State_PENDING, data.State)
	assert.Empty(t, data.BlockHash)
}

func requireStatusCode(t *testing.T, err error, want codes.Code) {
	t.Helper()
	require.Error(t, err)
	st, ok := status.FromError(err)
	require.True(t, ok)
	assert.Equal(t, want, st.Code())
}

func TestService_Integration_SkipWithoutBackends(t *testing.T) {
	t.Skip("requires a live PostgreSQL instance; exercised in the integration environment")
}
