// Package intake implements the gRPC SubmissionService and its REST bridge:
// the customer-facing surface that accepts payloads, assigns them a thread
// affinity, inserts the Pending row, and publishes them onto the dispatch
// channel for a worker to pick up.
package intake

import (
	"context"
	"encoding/base64"
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/availproject/turbo-gateway/internal/auth"
	"github.com/availproject/turbo-gateway/internal/dispatch"
	"github.com/availproject/turbo-gateway/internal/ledgerstore"
	"github.com/availproject/turbo-gateway/internal/metrics"
	pb "github.com/availproject/turbo-gateway/pkg/proto/submission/v1"
)

// maxPayloadBytes bounds a single submission's size; larger payloads should
// be chunked by the caller before they reach the gateway.
const maxPayloadBytes = 512 * 1024

// Service implements pb.SubmissionServiceServer.
type Service struct {
	pb.UnimplementedSubmissionServiceServer

	store      *ledgerstore.Store
	auth       *auth.Authenticator
	channel    *dispatch.Channel
	log        zerolog.Logger
	threadSeq  uint64
}

func NewService(store *ledgerstore.Store, authenticator *auth.Authenticator, channel *dispatch.Channel, logger zerolog.Logger) *Service {
	return &Service{
		store:   store,
		auth:    authenticator,
		channel: channel,
		log:     logger.With().Str("component", "submission_service").Logger(),
	}
}

// nextThreadID round-robins new submissions across thread affinities so
// work spreads evenly over the worker pool regardless of which app account
// it belongs to.
func (s *Service) nextThreadID() int {
	return int(atomic.AddUint64(&s.threadSeq, 1))
}

// SubmitData accepts a binary payload over gRPC.
func (s *Service) SubmitData(ctx context.Context, req *pb.SubmitDataRequest) (*pb.SubmitDataResponse, error) {
	if req.AppAccountId == "" {
		return nil, status.Error(codes.InvalidArgument, "app_account_id is required")
	}
	if len(req.Data) == 0 {
		return nil, status.Error(codes.InvalidArgument, "data must not be empty")
	}
	if len(req.Data) > maxPayloadBytes {
		return nil, status.Errorf(codes.InvalidArgument, "data exceeds maximum payload size of %d bytes", maxPayloadBytes)
	}

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "missing authenticated user")
	}

	submissionID, err := s.accept(ctx, req.AppAccountId, userID, req.Data)
	if err != nil {
		return nil, err
	}

	return &pb.SubmitDataResponse{SubmissionId: submissionID, State: pb.State_PENDING}, nil
}

// SubmitRawData accepts a base64-encoded payload, for REST callers posting JSON.
func (s *Service) SubmitRawData(ctx context.Context, req *pb.SubmitRawDataRequest) (*pb.SubmitRawDataResponse, error) {
	if req.AppAccountId == "" {
		return nil, status.Error(codes.InvalidArgument, "app_account_id is required")
	}

	data, err := base64.StdEncoding.DecodeString(req.DataBase64)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "data_base64 is not valid base64: %v", err)
	}
	if len(data) == 0 {
		return nil, status.Error(codes.InvalidArgument, "decoded data must not be empty")
	}
	if len(data) > maxPayloadBytes {
		return nil, status.Errorf(codes.InvalidArgument, "data exceeds maximum payload size of %d bytes", maxPayloadBytes)
	}

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "missing authenticated user")
	}

	submissionID, err := s.accept(ctx, req.AppAccountId, userID, data)
	if err != nil {
		return nil, err
	}

	return &pb.SubmitRawDataResponse{SubmissionId: submissionID, State: pb.State_PENDING}, nil
}

// accept resolves app_account_id to its owning account, rejects it if that
// account does not belong to the authenticated caller, then inserts the
// Pending row and publishes the message onto the broadcast channel.
// Insertion happens before publish so that even if the process crashes
// between the two, internal/reconciler's staleness scan will still pick the
// row up once it ages past its threshold.
func (s *Service) accept(ctx context.Context, appAccountID, userID string, payload []byte) (string, error) {
	account, _, err := s.store.GetAccountWithUser(ctx, appAccountID)
	if err != nil {
		s.log.Error().Err(err).Str("app_account_id", appAccountID).Msg("account lookup failed")
		return "", status.Errorf(codes.InvalidArgument, "unknown app_account_id: %v", err)
	}
	if account.UserID != userID {
		s.log.Warn().Str("app_account_id", appAccountID).Str("user_id", userID).Msg("app_account_id does not belong to authenticated user")
		return "", status.Error(codes.PermissionDenied, "app_account_id does not belong to the authenticated user")
	}

	submissionID := uuid.New().String()

	sub := &ledgerstore.Submission{
		SubmissionID: submissionID,
		AppAccountID: appAccountID,
		UserID:       userID,
		AmountData:   fmt.Sprintf("%d", len(payload)),
		Payload:      payload,
	}

	if err := s.store.InsertSubmission(ctx, sub); err != nil {
		s.log.Error().Err(err).Str("app_account_id", appAccountID).Msg("failed to insert submission")
		return "", status.Errorf(codes.Internal, "failed to accept submission: %v", err)
	}

	metrics.SubmissionsAccepted.WithLabelValues(appAccountID).Inc()

	s.channel.Publish(dispatch.Message{
		SubmissionID: submissionID,
		ThreadID:     s.nextThreadID(),
		Payload:      payload,
		AppAccountID: appAccountID,
		ChainAppID:   account.ChainAppID,
		UserID:       userID,
	})

	s.log.Info().Str("submission_id", submissionID).Str("app_account_id", appAccountID).Int("payload_bytes", len(payload)).Msg("submission accepted")
	return submissionID, nil
}

// GetSubmissionInfo returns the current projection of a submission.
func (s *Service) GetSubmissionInfo(ctx context.Context, req *pb.GetSubmissionInfoRequest) (*pb.GetSubmissionInfoResponse, error) {
	if req.SubmissionId == "" {
		return nil, status.Error(codes.InvalidArgument, "submission_id is required")
	}

	sub, err := s.store.GetSubmission(ctx, req.SubmissionId)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to fetch submission: %v", err)
	}
	if sub == nil {
		return nil, status.Error(codes.NotFound, "submission not found")
	}

	return &pb.GetSubmissionInfoResponse{Submission: toSubmissionData(sub)}, nil
}

// GetPreImage returns the raw payload bytes for a still-Pending submission.
func (s *Service) GetPreImage(ctx context.Context, req *pb.GetPreImageRequest) (*pb.GetPreImageResponse, error) {
	if req.SubmissionId == "" {
		return nil, status.Error(codes.InvalidArgument, "submission_id is required")
	}

	sub, err := s.store.GetSubmission(ctx, req.SubmissionId)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to fetch submission: %v", err)
	}
	if sub == nil {
		return nil, status.Error(codes.NotFound, "submission not found")
	}

	return &pb.GetPreImageResponse{Data: sub.Payload}, nil
}

func toSubmissionData(sub *ledgerstore.Submission) *pb.SubmissionData {
	data := &pb.SubmissionData{
		SubmissionId: sub.SubmissionID,
		RetryCount:   sub.RetryCount,
	}

	switch sub.State() {
	case ledgerstore.StateFinalized:
		data.State = pb.State_FINALIZED
	case ledgerstore.StateError:
		data.State = pb.State_ERROR
	default:
		data.State = pb.State_PENDING
	}

	if sub.BlockNumber.Valid {
		data.BlockNumber = sub.BlockNumber.Int64
	}
	if sub.BlockHash.Valid {
		data.BlockHash = sub.BlockHash.String
	}
	if sub.TxHash.Valid {
		data.TxHash = sub.TxHash.String
	}
	if sub.DataHash.Valid {
		data.DataHash = sub.DataHash.String
	}
	if sub.ExtrinsicIndex.Valid {
		data.ExtrinsicIndex = sub.ExtrinsicIndex.Int64
	}
	if sub.Error.Valid {
		data.Error = sub.Error.String
	}

	return data
}
