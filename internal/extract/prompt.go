package extract

const receiptPrompt = `
Analyze this receipt image and extract the following data in strict JSON format:
{
  "items": [
    {
      "description": "Item Name",
      "price": 8.99,
      "originalPrice": 10.99,
      "discount": 2.00
    }
  ],
  "subtotal": 8.99,
  "tax": 1.00,
  "tip": 2.00,
  "total": 11.99
}

Rules:
1. Extract all line items.
2. If an item has a discount/coupon/savings listed below it or associated with it:
   - Calculate the final "price" = original price - discount.
   - Set "originalPrice" to the listed price.
   - Set "discount" to the discount amount (positive number).
3. If no discount, just set "price" and omit "originalPrice"/"discount".
4. Do not list discounts as separate items. Merge them into the parent item.
5. Group modifiers with their parent item if possible (e.g. "Burger" + "Cheese" -> "Burger with Cheese").
6. Ignore "Thank You" or other decorative text.
7. Ensure all prices are numbers (e.g. 10.50, not "$10.50").
8. If tax is not explicitly listed, try to calculate it or set to 0. If there is no tip, set it to 0.
9. Return ONLY the JSON object, no markdown formatting.
`
