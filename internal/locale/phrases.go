package locale

// Phrase keys used across the bot, webhook router, and scheduler
const (
	KeyPaymentConfirmed  = "payment_confirmed"
	KeyPaymentFailed     = "payment_failed"
	KeyRenewReminder     = "renew_reminder"
	KeyExpiredNotice     = "expired_notice"
	KeyToday             = "today"
	KeyTomorrow          = "tomorrow"
	KeyTrialGranted      = "trial_granted"
	KeyTrialAlreadyUsed  = "trial_already_used"
	KeySubscriptionInfo  = "subscription_info"
	KeyNoSubscription    = "no_subscription"
	KeyChoosePlan        = "choose_plan"
	KeyChooseMethod      = "choose_method"
	KeyPayLink           = "pay_link"
	KeyInvalidProduct    = "invalid_product"
	KeyStart             = "start"
	KeyBtnJoin           = "btn_join"
	KeyBtnMySub          = "btn_mysub"
	KeyBtnTrial          = "btn_trial"
)

var phrases = map[string]map[string]string{
	"en": {
		KeyPaymentConfirmed: "Thank you for your choice 🎉\n\n<a href=\"{link}\">Subscribe</a> so you don't miss any announcements 📣\n\nYour subscription is purchased and available in the \"My subscription 🔑\" section.",
		KeyPaymentFailed:    "Something went wrong while creating the payment 😔\nPlease try another payment method.",
		KeyRenewReminder:    "Hello, {name} 👋\n\nThank you for using our service 💚\n\nYour VPN subscription expires {day}, at the end of the day.\n\nTo renew it, just go to the \"Join 🚀\" section and make a payment.",
		KeyExpiredNotice:    "Hello, {name} 👋\n\nYour VPN subscription has expired 😔\nRenew it in the \"Join 🚀\" section to get back online.",
		KeyToday:            "today",
		KeyTomorrow:         "tomorrow",
		KeyTrialGranted:     "Your trial access is ready 🎁\nFind the connection link in the \"My subscription 🔑\" section.",
		KeyTrialAlreadyUsed: "The trial period has already been used on this account.",
		KeySubscriptionInfo: "Your subscription is active until {date}.\n\nConnection link:\n<code>{url}</code>",
		KeyNoSubscription:   "You don't have an active subscription yet.",
		KeyChoosePlan:       "Choose a plan:",
		KeyChooseMethod:     "Choose a payment method:",
		KeyPayLink:          "Your payment link for {amount} is ready:\n{url}",
		KeyInvalidProduct:   "Error: Invalid product type.\nPlease contact the support team.",
		KeyStart:            "Welcome to {shop} 👋\nPick a plan to get started.",
		KeyBtnJoin:          "Join 🚀",
		KeyBtnMySub:         "My subscription 🔑",
		KeyBtnTrial:         "Trial access 🎁",
	},
	"ru": {
		KeyPaymentConfirmed: "Спасибо за выбор 🎉\n\n<a href=\"{link}\">Подпишитесь</a>, чтобы не пропустить анонсы 📣\n\nПодписка оплачена и доступна в разделе «Моя подписка 🔑».",
		KeyPaymentFailed:    "Не получилось создать платёж 😔\nПопробуйте другой способ оплаты.",
		KeyRenewReminder:    "Здравствуйте, {name} 👋\n\nСпасибо, что пользуетесь нашим сервисом 💚\n\nВаша VPN-подписка истекает {day}, в конце дня.\n\nЧтобы продлить её, зайдите в раздел «Подключиться 🚀» и оплатите подписку.",
		KeyExpiredNotice:    "Здравствуйте, {name} 👋\n\nВаша VPN-подписка закончилась 😔\nПродлите её в разделе «Подключиться 🚀», чтобы вернуться в сеть.",
		KeyToday:            "сегодня",
		KeyTomorrow:         "завтра",
		KeyTrialGranted:     "Пробный доступ готов 🎁\nСсылка для подключения — в разделе «Моя подписка 🔑».",
		KeyTrialAlreadyUsed: "Пробный период на этом аккаунте уже использован.",
		KeySubscriptionInfo: "Ваша подписка активна до {date}.\n\nСсылка для подключения:\n<code>{url}</code>",
		KeyNoSubscription:   "У вас пока нет активной подписки.",
		KeyChoosePlan:       "Выберите тариф:",
		KeyChooseMethod:     "Выберите способ оплаты:",
		KeyPayLink:          "Ссылка на оплату {amount} готова:\n{url}",
		KeyInvalidProduct:   "Ошибка: неизвестный тариф.\nНапишите в поддержку.",
		KeyStart:            "Добро пожаловать в {shop} 👋\nВыберите тариф, чтобы начать.",
		KeyBtnJoin:          "Подключиться 🚀",
		KeyBtnMySub:         "Моя подписка 🔑",
		KeyBtnTrial:         "Пробный доступ 🎁",
	},
}
