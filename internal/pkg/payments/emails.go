package payments

import (
	"fmt"

	"github.com/CourseForgeHQ/CourseForge/app/models"
	"github.com/CourseForgeHQ/CourseForge/internal/pkg/mail"
)

// Email bodies live here as minimal HTML; layout and styling belong to the
// marketing templates outside this subsystem.

func welcomeEmail(user *models.User, resetBase string) mail.Message {
	resetLink := fmt.Sprintf("%s/reset-password?token=%s", resetBase, user.ResetToken)
	return mail.Message{
		To:      user.Email,
		Subject: "Welcome to CourseForge - your purchase is confirmed",
		HTML: fmt.Sprintf(
			"<p>Thanks for your purchase! Your account is ready on the <strong>%s</strong> tier.</p>"+
				"<p><a href=%q>Set your password</a> to sign in.</p>",
			user.Tier, resetLink),
	}
}

func tierConfirmationEmail(user *models.User) mail.Message {
	return mail.Message{
		To:      user.Email,
		Subject: fmt.Sprintf("Purchase confirmed - %s tier", user.Tier),
		HTML: fmt.Sprintf(
			"<p>Thanks for your purchase! Your account is now on the <strong>%s</strong> tier.</p>",
			user.Tier),
	}
}

func aiPremiumEmail(user *models.User) mail.Message {
	return mail.Message{
		To:      user.Email,
		Subject: "Your AI Premium credits are ready",
		HTML: fmt.Sprintf(
			"<p>Your AI Premium purchase is confirmed. %d credits were added to your account (%d total).</p>",
			aiPremiumCredits, user.AICredits),
	}
}

func textbookEmail(user *models.User) mail.Message {
	return mail.Message{
		To:      user.Email,
		Subject: "Your textbook purchase is confirmed",
		HTML:    "<p>Thanks for buying the textbook! It is now available in your library.</p>",
	}
}

func toolkitEmail(user *models.User) mail.Message {
	return mail.Message{
		To:      user.Email,
		Subject: "Your Architecture Mastery Toolkit is ready",
		HTML:    "<p>Thanks for your purchase! The Architecture Mastery Toolkit is now unlocked on your account.</p>",
	}
}
