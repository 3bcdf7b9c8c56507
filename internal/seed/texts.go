package seed

import "github.com/spacesedan/steamnoodles/internal/models"

var reviewTexts = map[models.Sentiment][]string{
	models.SentimentPositive: {
		"Absolutely amazing food! The noodles were perfectly cooked and the flavors were incredible.",
		"Outstanding service and delicious food. Will definitely be back!",
		"Best noodles in town! The staff was friendly and the atmosphere was great.",
		"Loved everything about this place. The portions were generous and the taste was fantastic.",
		"Excellent dining experience. The food arrived quickly and was still hot.",
		"Great value for money. The noodles were fresh and the service was top-notch.",
		"Amazing flavors! The chef really knows what they're doing.",
		"Perfect place for a quick lunch. The food is consistently good.",
		"Highly recommend the spicy noodles. The ambiance is also very nice.",
		"Fantastic restaurant! The staff was attentive and the food was delicious.",
	},
	models.SentimentNegative: {
		"Terrible experience. The food was cold and the service was slow.",
		"Very disappointing. The noodles were overcooked and bland.",
		"Poor service and mediocre food. Won't be coming back.",
		"The food took forever to arrive and when it did, it was lukewarm.",
		"Expensive for what you get. The portions were small and tasteless.",
		"The restaurant was dirty and the staff seemed uninterested.",
		"Worst noodles I've ever had. The broth was too salty.",
		"Terrible customer service. The waiters were rude and inattentive.",
		"Overpriced and underwhelming. The food lacked flavor completely.",
		"Would not recommend. The quality has really gone downhill.",
	},
	models.SentimentNeutral: {
		"The food was okay, nothing special but not bad either.",
		"Average experience. The noodles were decent and the service was fine.",
		"It's an okay place for a quick meal. Nothing outstanding though.",
		"Decent noodles but nothing to write home about.",
		"Average restaurant with average food. It's fine for a casual meal.",
		"The food was satisfactory. Not great, not terrible.",
		"Nothing special but gets the job done. Food was okay.",
		"The service was average and the food was standard.",
		"It's fine. Not the best I've had but not the worst either.",
		"Fair enough. The food was okay and the staff was polite.",
	},
}

var variations = []string{
	" The restaurant atmosphere was pleasant.",
	" Staff was professional.",
	" Good location and easy to find.",
	" Parking was convenient.",
	" Clean restrooms.",
	" Music was at a good volume.",
}
