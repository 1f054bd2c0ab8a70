package runtime

import (
	"chat-bridge/contract"
	"chat-bridge/domain"
	"chat-bridge/domain/event"
	"chat-bridge/mocks"
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newTestDispatcher(t *testing.T, registry contract.IRegistry,
	translator contract.ITranslator) (*Dispatcher, chan event.Telemetry) {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	telemetry := make(chan event.Telemetry, 32)
	return NewDispatcher(log, registry, translator, telemetry, time.Second), telemetry
}

func member(connectionID string, language domain.Language, sink contract.EventSink) contract.Member {
	return contract.Member{
		Participant: domain.Participant{
			ConnectionID: connectionID,
			Language:     language,
			Room:         domain.RoomID("abc"),
		},
		Sink: sink,
	}
}

func TestDispatcher_SameLanguage_NoTranslationCall(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRegistry := mocks.NewMockIRegistry(ctrl)
	mockTranslator := mocks.NewMockITranslator(ctrl)
	senderSink := mocks.NewMockEventSink(ctrl)
	recipientSink := mocks.NewMockEventSink(ctrl)

	// Given a sender and a recipient sharing a language
	roomID := domain.RoomID("abc")
	mockRegistry.EXPECT().ParticipantsOf(roomID).Return([]contract.Member{
		member("sender", domain.English, senderSink),
		member("recipient", domain.English, recipientSink),
	}).Times(1)

	var delivered event.MessageDelivered
	recipientSink.EXPECT().Consume(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, e event.DomainEvent) error {
			delivered = e.(event.MessageDelivered)
			return nil
		}).Times(1)
	// And the translator is never invoked, and the sender gets no copy

	d, _ := newTestDispatcher(t, mockRegistry, mockTranslator)

	// When the message is dispatched
	msg := domain.Message{ID: "1", Original: "Hello", SourceLanguage: domain.English, CreatedAt: time.Now()}
	d.Dispatch(msg, "sender", roomID)

	// Then the recipient received the original untouched, inline
	req.Equal("1", delivered.ID)
	req.Equal("Hello", delivered.Original)
	req.Equal("Hello", delivered.Translated)
}

func TestDispatcher_DifferentLanguage_TranslatesOncePerRecipient(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRegistry := mocks.NewMockIRegistry(ctrl)
	mockTranslator := mocks.NewMockITranslator(ctrl)
	recipientSink := mocks.NewMockEventSink(ctrl)

	// Given a pt recipient for an en sender
	roomID := domain.RoomID("abc")
	mockRegistry.EXPECT().ParticipantsOf(roomID).Return([]contract.Member{
		member("sender", domain.English, mocks.NewMockEventSink(ctrl)),
		member("recipient", domain.Portuguese, recipientSink),
	}).Times(1)

	mockTranslator.EXPECT().
		Translate(gomock.Any(), "Hello", domain.English, domain.Portuguese).
		Return("Olá", nil).
		Times(1)

	deliveries := make(chan event.MessageDelivered, 1)
	recipientSink.EXPECT().Consume(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, e event.DomainEvent) error {
			deliveries <- e.(event.MessageDelivered)
			return nil
		}).Times(1)

	d, _ := newTestDispatcher(t, mockRegistry, mockTranslator)

	// When the message is dispatched
	msg := domain.Message{ID: "1", Original: "Hello", SourceLanguage: domain.English, CreatedAt: time.Now()}
	d.Dispatch(msg, "sender", roomID)

	// Then the recipient received the translated copy with the original kept
	select {
	case delivered := <-deliveries:
		req.Equal("Olá", delivered.Translated)
		req.Equal("Hello", delivered.Original)
	case <-time.After(time.Second):
		req.Fail("Translated copy was not delivered in time")
	}
}

func TestDispatcher_TranslationFailure_DeliversMarkedFallback(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRegistry := mocks.NewMockIRegistry(ctrl)
	mockTranslator := mocks.NewMockITranslator(ctrl)
	ptSink := mocks.NewMockEventSink(ctrl)
	enSink := mocks.NewMockEventSink(ctrl)

	// Given two recipients, one needing a translation that will fail
	roomID := domain.RoomID("abc")
	mockRegistry.EXPECT().ParticipantsOf(roomID).Return([]contract.Member{
		member("sender", domain.English, mocks.NewMockEventSink(ctrl)),
		member("pt-recipient", domain.Portuguese, ptSink),
		member("en-recipient", domain.English, enSink),
	}).Times(1)

	mockTranslator.EXPECT().
		Translate(gomock.Any(), "Hello", domain.English, domain.Portuguese).
		Return("", fmt.Errorf("provider exploded")).
		Times(1)

	ptDeliveries := make(chan event.MessageDelivered, 1)
	ptSink.EXPECT().Consume(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, e event.DomainEvent) error {
			ptDeliveries <- e.(event.MessageDelivered)
			return nil
		}).Times(1)
	var enDelivered event.MessageDelivered
	enSink.EXPECT().Consume(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, e event.DomainEvent) error {
			enDelivered = e.(event.MessageDelivered)
			return nil
		}).Times(1)

	d, telemetry := newTestDispatcher(t, mockRegistry, mockTranslator)

	// When the message is dispatched
	msg := domain.Message{ID: "1", Original: "Hello", SourceLanguage: domain.English, CreatedAt: time.Now()}
	d.Dispatch(msg, "sender", roomID)

	// Then the failing recipient still got a marked, non-empty fallback
	select {
	case delivered := <-ptDeliveries:
		req.Equal(FallbackPrefix+"Hello", delivered.Translated)
	case <-time.After(time.Second):
		req.Fail("Fallback copy was not delivered in time")
	}
	// And the other recipient got its untouched copy inline
	req.Equal("Hello", enDelivered.Translated)

	// And the failure was counted on the telemetry side-channel
	req.Eventually(func() bool {
		select {
		case evt := <-telemetry:
			return evt.Type == event.TranslationFailedType
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond)
}

func TestDispatcher_GoneRecipient_IsSilentNoOp(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRegistry := mocks.NewMockIRegistry(ctrl)
	mockTranslator := mocks.NewMockITranslator(ctrl)
	goneSink := mocks.NewMockEventSink(ctrl)

	// Given a recipient whose connection is already gone
	roomID := domain.RoomID("abc")
	mockRegistry.EXPECT().ParticipantsOf(roomID).Return([]contract.Member{
		member("sender", domain.English, mocks.NewMockEventSink(ctrl)),
		member("gone", domain.English, goneSink),
	}).Times(1)

	goneSink.EXPECT().Consume(gomock.Any(), gomock.Any()).
		Return(context.Canceled).
		Times(1)

	d, _ := newTestDispatcher(t, mockRegistry, mockTranslator)

	// When the message is dispatched
	// Then the failed delivery attempt does not crash the dispatcher
	msg := domain.Message{ID: "1", Original: "Hello", SourceLanguage: domain.English, CreatedAt: time.Now()}
	d.Dispatch(msg, "sender", roomID)
}

func TestDispatcher_SlowTranslationDoesNotDelayOtherRooms(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRegistry := mocks.NewMockIRegistry(ctrl)
	mockTranslator := mocks.NewMockITranslator(ctrl)
	slowSink := mocks.NewMockEventSink(ctrl)
	fastSink := mocks.NewMockEventSink(ctrl)

	slowRoom := domain.RoomID("slow")
	fastRoom := domain.RoomID("fast")
	mockRegistry.EXPECT().ParticipantsOf(slowRoom).Return([]contract.Member{
		member("slow-sender", domain.English, mocks.NewMockEventSink(ctrl)),
		member("slow-recipient", domain.Portuguese, slowSink),
	}).Times(1)
	mockRegistry.EXPECT().ParticipantsOf(fastRoom).Return([]contract.Member{
		member("fast-sender", domain.English, mocks.NewMockEventSink(ctrl)),
		member("fast-recipient", domain.English, fastSink),
	}).Times(1)

	// Given a provider that does not answer until released
	release := make(chan struct{})
	mockTranslator.EXPECT().
		Translate(gomock.Any(), "Hello", domain.English, domain.Portuguese).
		DoAndReturn(func(ctx context.Context, text string, from, to domain.Language) (string, error) {
			<-release
			return "Olá", nil
		}).Times(1)

	slowDeliveries := make(chan event.MessageDelivered, 1)
	slowSink.EXPECT().Consume(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, e event.DomainEvent) error {
			slowDeliveries <- e.(event.MessageDelivered)
			return nil
		}).Times(1)

	var fastDelivered event.MessageDelivered
	fastSink.EXPECT().Consume(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, e event.DomainEvent) error {
			fastDelivered = e.(event.MessageDelivered)
			return nil
		}).Times(1)

	d, _ := newTestDispatcher(t, mockRegistry, mockTranslator)

	// When a message whose translation hangs is in flight
	d.Dispatch(domain.Message{ID: "1", Original: "Hello", SourceLanguage: domain.English, CreatedAt: time.Now()},
		"slow-sender", slowRoom)

	// Then an unrelated same-language message goes out without waiting
	d.Dispatch(domain.Message{ID: "2", Original: "Hi there", SourceLanguage: domain.English, CreatedAt: time.Now()},
		"fast-sender", fastRoom)
	req.Equal("Hi there", fastDelivered.Translated)

	// And the slow recipient still gets its copy once the provider answers
	close(release)
	select {
	case delivered := <-slowDeliveries:
		req.Equal("Olá", delivered.Translated)
	case <-time.After(time.Second):
		req.Fail("Slow room copy was not delivered after release")
	}
}
