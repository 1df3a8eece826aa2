package mail

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"forest-tails/server/internal/store"
)

const (
	headerColor = "#2E7D32"
	bodyColor   = "#F1F8E9"
	fontStyle   = "font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif;"
)

// Notifications composes the game's transactional emails on top of a
// Sender.
type Notifications struct {
	sender Sender
	logger *zap.Logger
}

func NewNotifications(sender Sender, logger *zap.Logger) *Notifications {
	return &Notifications{sender: sender, logger: logger}
}

// SendVerificationCode mails a one-time code for the given purpose.
func (n *Notifications) SendVerificationCode(ctx context.Context, email, code string, purpose store.CodePurpose) error {
	subject := "Verify your account - Forest Tails"
	action := "to complete your registration"
	if purpose == store.PurposePasswordRecovery {
		subject = "Password Recovery - Forest Tails"
		action = "to reset your password"
	}

	body := fmt.Sprintf(`
            <div style="%s background-color: %s; padding: 20px; border-radius: 10px;">
                <div style="background-color: %s; padding: 15px; border-radius: 10px 10px 0 0; text-align: center;">
                    <h1 style="color: white; margin: 0;">Forest Tails 🌲</h1>
                </div>
                <div style="padding: 20px; background-color: white; border: 1px solid #ddd;">
                    <h2>Verification Code</h2>
                    <p>Hi, traveler!</p>
                    <p>Use the following code %s:</p>
                    <div style="text-align: center; margin: 30px 0;">
                        <span style="font-size: 32px; letter-spacing: 5px; font-weight: bold; color: %s; border: 2px dashed %s; padding: 10px 20px;">
                            %s
                        </span>
                    </div>
                    <p>This code will expire in 15 minutes.</p>
                    <p style="font-size: 12px; color: #888;">If you did not request this code, please ignore this message.</p>
                </div>
            </div>`,
		fontStyle, bodyColor, headerColor, action, headerColor, headerColor, code)

	return n.sender.Send(ctx, email, subject, body)
}

// SendWelcome mails the post-verification greeting.
func (n *Notifications) SendWelcome(ctx context.Context, email, username string) error {
	subject := "Welcome to Forest Tails! 🦊"
	body := fmt.Sprintf(`
            <div style="%s background-color: %s; padding: 20px; border-radius: 10px;">
                <div style="background-color: %s; padding: 15px; border-radius: 10px 10px 0 0; text-align: center;">
                    <h1 style="color: white; margin: 0;">Adventure Started!</h1>
                </div>
                <div style="padding: 20px; background-color: white;">
                    <h3>Hi, %s!</h3>
                    <p>Your account has been successfully created. You can now enter the world of Forest Tails.</p>
                    <p>See you in the forest!</p>
                </div>
            </div>`,
		fontStyle, bodyColor, headerColor, username)

	return n.sender.Send(ctx, email, subject, body)
}
