package service

import (
	"context"
	"log/slog"
	"net/http"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mmynk/billkhata/internal/ledger"
	"github.com/mmynk/billkhata/internal/models"
)

const MemberServiceName = "billkhata.v1.MemberService"

type RegisterMemberRequest struct {
	Name       string          `json:"name"`
	Phone      string          `json:"phone"`
	WhatsApp   string          `json:"whatsapp"`
	Facebook   string          `json:"facebook"`
	RoomInfo   string          `json:"room_info"`
	AvatarRef  string          `json:"avatar_ref"`
	RentAmount decimal.Decimal `json:"rent_amount"`
	JoinedDate string          `json:"joined_date"`
}

type UpdateMemberRequest struct {
	ID         int64            `json:"id"`
	Name       *string          `json:"name,omitempty"`
	Phone      *string          `json:"phone,omitempty"`
	WhatsApp   *string          `json:"whatsapp,omitempty"`
	Facebook   *string          `json:"facebook,omitempty"`
	RoomInfo   *string          `json:"room_info,omitempty"`
	AvatarRef  *string          `json:"avatar_ref,omitempty"`
	RentAmount *decimal.Decimal `json:"rent_amount,omitempty"`
	JoinedDate *string          `json:"joined_date,omitempty"`
}

type MemberRequest struct {
	ID int64 `json:"id"`
}

type MemberResponse struct {
	Member *Member `json:"member"`
}

type DeactivateMemberResponse struct{}

type ListMembersRequest struct {
	ActiveOnly bool `json:"active_only"`
}

type ListMembersResponse struct {
	Members []*Member `json:"members"`
}

// MemberService manages room members.
type MemberService struct {
	members *ledger.MemberRegistry
}

// NewMemberService creates a MemberService.
func NewMemberService(members *ledger.MemberRegistry) *MemberService {
	return &MemberService{members: members}
}

// Handler returns the service's path prefix and HTTP handler.
func (s *MemberService) Handler(opts ...connect.HandlerOption) (string, http.Handler) {
	p := newProcedures(MemberServiceName, opts)
	handle(p, "Register", s.Register)
	handle(p, "Update", s.Update)
	handle(p, "Deactivate", s.Deactivate)
	handle(p, "Get", s.Get)
	handle(p, "List", s.List)
	return p.path(), p.mux
}

func (s *MemberService) Register(ctx context.Context, req *RegisterMemberRequest) (*MemberResponse, error) {
	joined, err := parseDate("joined_date", req.JoinedDate)
	if err != nil {
		return nil, err
	}

	member := &models.Member{
		Name:       req.Name,
		Phone:      req.Phone,
		WhatsApp:   req.WhatsApp,
		Facebook:   req.Facebook,
		RoomInfo:   req.RoomInfo,
		AvatarRef:  req.AvatarRef,
		RentAmount: req.RentAmount,
		JoinedDate: joined,
	}
	if err := s.members.Register(ctx, member); err != nil {
		return nil, err
	}

	slog.Info("Member registered", "member_id", member.ID, "name", member.Name)
	return &MemberResponse{Member: toMember(member)}, nil
}

func (s *MemberService) Update(ctx context.Context, req *UpdateMemberRequest) (*MemberResponse, error) {
	update := models.MemberUpdate{
		Name:       req.Name,
		Phone:      req.Phone,
		WhatsApp:   req.WhatsApp,
		Facebook:   req.Facebook,
		RoomInfo:   req.RoomInfo,
		AvatarRef:  req.AvatarRef,
		RentAmount: req.RentAmount,
	}
	if req.JoinedDate != nil {
		joined, err := parseDate("joined_date", *req.JoinedDate)
		if err != nil {
			return nil, err
		}
		update.JoinedDate = &joined
	}

	member, err := s.members.Update(ctx, req.ID, update)
	if err != nil {
		return nil, err
	}
	return &MemberResponse{Member: toMember(member)}, nil
}

func (s *MemberService) Deactivate(ctx context.Context, req *MemberRequest) (*DeactivateMemberResponse, error) {
	if err := s.members.Deactivate(ctx, req.ID); err != nil {
		return nil, err
	}
	slog.Info("Member deactivated", "member_id", req.ID)
	return &DeactivateMemberResponse{}, nil
}

func (s *MemberService) Get(ctx context.Context, req *MemberRequest) (*MemberResponse, error) {
	member, err := s.members.Get(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	return &MemberResponse{Member: toMember(member)}, nil
}

func (s *MemberService) List(ctx context.Context, req *ListMembersRequest) (*ListMembersResponse, error) {
	members, err := s.members.List(ctx, req.ActiveOnly)
	if err != nil {
		return nil, err
	}

	resp := &ListMembersResponse{Members: make([]*Member, len(members))}
	for i := range members {
		resp.Members[i] = toMember(&members[i])
	}
	return resp, nil
}
