package giftcard

import (
	"context"
	"strings"
	"testing"
	"time"

	"dayspa/internal/domain"
	"dayspa/internal/external"
	"dayspa/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

type MockCardRepo struct {
	mock.Mock
}

func (m *MockCardRepo) Create(ctx context.Context, g *domain.GiftCard) error {
	args := m.Called(ctx, g)
	return args.Error(0)
}

func (m *MockCardRepo) GetByID(ctx context.Context, id string) (*domain.GiftCard, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GiftCard), args.Error(1)
}

func (m *MockCardRepo) FindByCode(ctx context.Context, code string) ([]domain.GiftCard, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.GiftCard), args.Error(1)
}

func (m *MockCardRepo) SetStripeSession(ctx context.Context, id, sessionID string) error {
	args := m.Called(ctx, id, sessionID)
	return args.Error(0)
}

func (m *MockCardRepo) MarkRedeemed(ctx context.Context, id, redeemedBy string, at time.Time) (bool, error) {
	args := m.Called(ctx, id, redeemedBy, at)
	return args.Bool(0), args.Error(1)
}

func (m *MockCardRepo) Use(ctx context.Context, id string, amountCents int64, serviceName, notes, usedBy string) (string, error) {
	args := m.Called(ctx, id, amountCents, serviceName, notes, usedBy)
	return args.String(0), args.Error(1)
}

func (m *MockCardRepo) List(ctx context.Context, status string, limit, offset int) ([]domain.GiftCard, error) {
	args := m.Called(ctx, status, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.GiftCard), args.Error(1)
}

func (m *MockCardRepo) ListUsages(ctx context.Context, cardID string) ([]domain.GiftCardUsage, error) {
	args := m.Called(ctx, cardID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.GiftCardUsage), args.Error(1)
}

type MockCheckout struct {
	mock.Mock
}

func (m *MockCheckout) CreateGiftCardSession(ctx context.Context, g *domain.GiftCard) (*external.CheckoutSession, error) {
	args := m.Called(ctx, g)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*external.CheckoutSession), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) GiftCardUsed(ctx context.Context, g *domain.GiftCard, amountCents int64, serviceName string) {
	m.Called(ctx, g, amountCents, serviceName)
}

const testCardID = "7f9c24e8-1b2a-4f3e-9d5c-8a7b6c5d4e3f"

func TestService_Purchase(t *testing.T) {
	mockCards := new(MockCardRepo)
	mockCards.On("Create", mock.Anything, mock.MatchedBy(func(g *domain.GiftCard) bool {
		return g.FaceCents == 15000 && g.BalanceCents == 15000 && g.Status == domain.GiftCardPending
	})).Return(nil)
	mockCards.On("SetStripeSession", mock.Anything, mock.Anything, "cs_9").Return(nil)

	mockCheckout := new(MockCheckout)
	mockCheckout.On("CreateGiftCardSession", mock.Anything, mock.Anything).Return(&external.CheckoutSession{ID: "cs_9", URL: "https://checkout.test/cs_9"}, nil)

	service := NewService(mockCards, mockCheckout, nil, nil)

	card, payURL, err := service.Purchase(context.Background(), PurchaseRequest{
		Amount:      150.00,
		SenderName:  "Dana Reed",
		SenderEmail: "dana@example.com",
	})

	assert.NoError(t, err)
	assert.Equal(t, "https://checkout.test/cs_9", payURL)
	assert.Len(t, card.Code, codeLength)
	assert.NotContains(t, card.Code, "O")
	assert.NotContains(t, card.Code, "0")
	mockCards.AssertExpectations(t)
}

func TestService_Purchase_RoundsFractionalCents(t *testing.T) {
	mockCards := new(MockCardRepo)
	mockCards.On("Create", mock.Anything, mock.MatchedBy(func(g *domain.GiftCard) bool {
		return g.FaceCents == 10010
	})).Return(nil)
	mockCards.On("SetStripeSession", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	mockCheckout := new(MockCheckout)
	mockCheckout.On("CreateGiftCardSession", mock.Anything, mock.Anything).Return(&external.CheckoutSession{ID: "cs", URL: "u"}, nil)

	service := NewService(mockCards, mockCheckout, nil, nil)

	_, _, err := service.Purchase(context.Background(), PurchaseRequest{Amount: 100.1})
	assert.NoError(t, err)
	mockCards.AssertExpectations(t)
}

func TestService_Redeem_ByCode(t *testing.T) {
	card := domain.GiftCard{ID: testCardID, Code: "ABCDEFGHJK", Status: domain.GiftCardActive}

	mockCards := new(MockCardRepo)
	mockCards.On("FindByCode", mock.Anything, "ABCDEFGHJK").Return([]domain.GiftCard{card}, nil)
	mockCards.On("MarkRedeemed", mock.Anything, testCardID, "admin", mock.Anything).Return(true, nil)
	redeemed := card
	redeemed.Redeemed = true
	mockCards.On("GetByID", mock.Anything, testCardID).Return(&redeemed, nil)

	service := NewService(mockCards, nil, nil, nil)

	got, err := service.Redeem(context.Background(), "abcdefghjk", "admin")
	assert.NoError(t, err)
	assert.True(t, got.Redeemed)
	mockCards.AssertExpectations(t)
}

func TestService_Redeem_ByFullID(t *testing.T) {
	card := domain.GiftCard{ID: testCardID, Status: domain.GiftCardActive}

	mockCards := new(MockCardRepo)
	mockCards.On("GetByID", mock.Anything, testCardID).Return(&card, nil)
	mockCards.On("MarkRedeemed", mock.Anything, testCardID, "admin", mock.Anything).Return(true, nil)

	service := NewService(mockCards, nil, nil, nil)

	_, err := service.Redeem(context.Background(), testCardID, "admin")
	assert.NoError(t, err)
	mockCards.AssertNotCalled(t, "FindByCode", mock.Anything, mock.Anything)
}

func TestService_Redeem_NotFound(t *testing.T) {
	mockCards := new(MockCardRepo)
	mockCards.On("FindByCode", mock.Anything, "MISSING").Return([]domain.GiftCard{}, nil)

	service := NewService(mockCards, nil, nil, nil)

	_, err := service.Redeem(context.Background(), "missing", "admin")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_Redeem_AmbiguousCode(t *testing.T) {
	cards := []domain.GiftCard{
		{ID: "id-1", Code: "SHARED", Status: domain.GiftCardActive},
		{ID: "id-2", Code: "SHARED", Status: domain.GiftCardActive},
	}

	mockCards := new(MockCardRepo)
	mockCards.On("FindByCode", mock.Anything, "SHARED").Return(cards, nil)

	service := NewService(mockCards, nil, nil, nil)

	_, err := service.Redeem(context.Background(), "shared", "admin")
	assert.ErrorIs(t, err, ErrAmbiguousCode)
	mockCards.AssertNotCalled(t, "MarkRedeemed", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestService_Redeem_AlreadyRedeemed(t *testing.T) {
	card := domain.GiftCard{ID: testCardID, Code: "USEDCODE", Status: domain.GiftCardActive, Redeemed: true}

	mockCards := new(MockCardRepo)
	mockCards.On("FindByCode", mock.Anything, "USEDCODE").Return([]domain.GiftCard{card}, nil)

	service := NewService(mockCards, nil, nil, nil)

	_, err := service.Redeem(context.Background(), "usedcode", "admin")
	assert.ErrorIs(t, err, ErrAlreadyRedeemed)
}

func TestService_Redeem_LostRace(t *testing.T) {
	card := domain.GiftCard{ID: testCardID, Code: "RACECODE", Status: domain.GiftCardActive}

	mockCards := new(MockCardRepo)
	mockCards.On("FindByCode", mock.Anything, "RACECODE").Return([]domain.GiftCard{card}, nil)
	mockCards.On("MarkRedeemed", mock.Anything, testCardID, "admin", mock.Anything).Return(false, nil)

	service := NewService(mockCards, nil, nil, nil)

	_, err := service.Redeem(context.Background(), "racecode", "admin")
	assert.ErrorIs(t, err, ErrAlreadyRedeemed)
}

func TestService_Redeem_TestModeCard(t *testing.T) {
	card := domain.GiftCard{ID: testCardID, Code: "TESTCARD", Status: domain.GiftCardActive, TestMode: true}

	mockCards := new(MockCardRepo)
	mockCards.On("FindByCode", mock.Anything, "TESTCARD").Return([]domain.GiftCard{card}, nil)

	service := NewService(mockCards, nil, nil, nil)

	_, err := service.Redeem(context.Background(), "testcard", "admin")
	assert.ErrorIs(t, err, ErrTestPurchase)
}

func TestService_Redeem_PendingCard(t *testing.T) {
	card := domain.GiftCard{ID: testCardID, Code: "PENDCODE", Status: domain.GiftCardPending}

	mockCards := new(MockCardRepo)
	mockCards.On("FindByCode", mock.Anything, "PENDCODE").Return([]domain.GiftCard{card}, nil)

	service := NewService(mockCards, nil, nil, nil)

	_, err := service.Redeem(context.Background(), "pendcode", "admin")
	assert.ErrorIs(t, err, ErrNotActive)
}

func TestService_Use_Success(t *testing.T) {
	after := &domain.GiftCard{ID: testCardID, BalanceCents: 5000, Status: domain.GiftCardPartiallyUsed}

	mockCards := new(MockCardRepo)
	mockCards.On("Use", mock.Anything, testCardID, int64(10000), "Signature Facial", "", "lena").Return(repository.UseOK, nil)
	mockCards.On("GetByID", mock.Anything, testCardID).Return(after, nil)

	mockNotifs := new(MockNotifier)
	mockNotifs.On("GiftCardUsed", mock.Anything, after, int64(10000), "Signature Facial").Return()

	service := NewService(mockCards, nil, mockNotifs, nil)

	card, err := service.Use(context.Background(), testCardID, UseRequest{Amount: 100.00, ServiceName: "Signature Facial"}, "lena")
	assert.NoError(t, err)
	assert.Equal(t, int64(5000), card.BalanceCents)
	mockNotifs.AssertExpectations(t)
}

func TestService_Use_ErrorCodes(t *testing.T) {
	cases := []struct {
		repoCode string
		want     error
	}{
		{repository.UseNotFound, ErrNotFound},
		{repository.UseNotActive, ErrNotActive},
		{repository.UseInvalidAmount, ErrInvalidAmount},
		{repository.UseInsufficientBalance, ErrInsufficientBalance},
	}

	for _, tc := range cases {
		mockCards := new(MockCardRepo)
		mockCards.On("Use", mock.Anything, testCardID, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(tc.repoCode, nil)

		service := NewService(mockCards, nil, nil, nil)

		_, err := service.Use(context.Background(), testCardID, UseRequest{Amount: 50}, "lena")
		assert.ErrorIs(t, err, tc.want, tc.repoCode)
	}
}

func TestService_Redeem_LongNonUUIDInput(t *testing.T) {
	mockCards := new(MockCardRepo)

	service := NewService(mockCards, nil, nil, nil)

	// Long enough to be treated as a full id, but not a uuid: must not
	// reach the database (the postgres uuid cast would error there).
	_, err := service.Redeem(context.Background(), strings.Repeat("Z", 36), "admin")
	assert.ErrorIs(t, err, ErrNotFound)
	mockCards.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestService_Redeem_GetByIDNotFound(t *testing.T) {
	mockCards := new(MockCardRepo)
	mockCards.On("GetByID", mock.Anything, testCardID).Return(nil, gorm.ErrRecordNotFound)

	service := NewService(mockCards, nil, nil, nil)

	_, err := service.Redeem(context.Background(), testCardID, "admin")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNewRedeemCode_AlphabetOnly(t *testing.T) {
	for i := 0; i < 50; i++ {
		code := newRedeemCode()
		assert.Len(t, code, codeLength)
		for _, r := range code {
			assert.True(t, strings.ContainsRune(codeAlphabet, r), "unexpected rune %q", r)
		}
	}
}
